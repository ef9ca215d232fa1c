package template

// Vars are the values a server's options can refer to.
type Vars struct {
	AppID      int
	AppName    string
	ServerName string
	Session    string
	AppDir     string
	ExecDir    string
	Platform   string
	Arch       string
}

// Map returns v as template data. Later maps in extra override its keys.
func (v Vars) Map(extra ...map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"AppID":      v.AppID,
		"AppName":    v.AppName,
		"ServerName": v.ServerName,
		"Session":    v.Session,
		"AppDir":     v.AppDir,
		"ExecDir":    v.ExecDir,
		"Platform":   v.Platform,
		"Arch":       v.Arch,
	}
	for _, m := range extra {
		for key, value := range m {
			result[key] = value
		}
	}
	return result
}

package steamcmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"scsm/internal/archive"
	"scsm/pkg/logging"
)

// bootstrapArchive names the download for a platform.
func bootstrapArchive(goos string) (string, error) {
	switch goos {
	case "linux":
		return "steamcmd_linux.tar.gz", nil
	case "darwin":
		return "steamcmd_osx.tar.gz", nil
	case "windows":
		return "steamcmd.zip", nil
	default:
		return "", fmt.Errorf("steamcmd is not available for %s", goos)
	}
}

// Install downloads the bootstrap archive and unpacks it into the private
// directory. It is a no-op for a system SteamCMD.
func (s *SteamCMD) Install(ctx context.Context) error {
	if !s.managed {
		logging.Info(subsystem, "using system steamcmd at %s", s.exe)
		return nil
	}

	name, err := bootstrapArchive(s.goos)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	url := s.baseURL + "/" + name
	dest := filepath.Join(s.dir, name)
	if err := s.download(ctx, url, dest); err != nil {
		return err
	}
	defer os.Remove(dest)

	if err := archive.Extract(dest, s.dir); err != nil {
		return err
	}
	if !s.Installed() {
		return fmt.Errorf("%s did not contain %s", name, filepath.Base(s.exe))
	}

	logging.Info(subsystem, "installed steamcmd into %s", s.dir)
	return nil
}

func (s *SteamCMD) download(ctx context.Context, url, dest string) error {
	logging.Debug(subsystem, "downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	return f.Close()
}

package steamcmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

// AppInfo is the KeyValues tree SteamCMD prints for one app.
type AppInfo map[string]interface{}

// AppInfoParser extracts one app's block from app_info_print output.
type AppInfoParser interface {
	Parse(output []byte, appID int) (AppInfo, error)
}

// BlockScanner finds the line "<app_id>" and collects lines until the
// braces that follow it balance, then parses the block as KeyValues. It
// depends on SteamCMD printing every brace on its own line.
type BlockScanner struct{}

// Parse implements AppInfoParser.
func (BlockScanner) Parse(output []byte, appID int) (AppInfo, error) {
	key := strconv.Quote(strconv.Itoa(appID))

	var (
		block   []string
		started bool
		depth   int
	)
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if !started {
			if trimmed == key {
				started = true
				block = append(block, line)
			}
			continue
		}

		block = append(block, line)
		switch trimmed {
		case "{":
			depth++
		case "}":
			depth--
		}
		if depth == 0 && trimmed == "}" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !started || depth != 0 || len(block) < 3 {
		return nil, fmt.Errorf("app %d not found in app_info_print output", appID)
	}

	parsed, err := vdf.NewParser(strings.NewReader(strings.Join(block, "\n"))).Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing app info for %d: %w", appID, err)
	}
	info, ok := parsed[strconv.Itoa(appID)].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("app info for %d has no body", appID)
	}
	return AppInfo(info), nil
}

// Info returns the app info SteamCMD reports for appID.
func (s *SteamCMD) Info(ctx context.Context, appID int) (AppInfo, error) {
	out, _, err := s.output(ctx, "+login", "anonymous",
		"+app_info_update", "1", "+app_info_print", strconv.Itoa(appID), "+quit")
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(out, appID)
}

// BuildID returns depots.branches.<branch>.buildid, or 0 when absent.
func (i AppInfo) BuildID(branch string) int {
	if branch == "" {
		branch = "public"
	}
	v, ok := lookup(i, "depots", "branches", branch, "buildid")
	if !ok {
		return 0
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return id
}

func lookup(m map[string]interface{}, path ...string) (string, bool) {
	var cur interface{} = m
	for _, key := range path {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return "", false
		}
		if cur, ok = node[key]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

package mcp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// homePattern matches a home prefix at the start of a string or after a
// separator; group 1 is the prefix itself
var homePattern = regexp.MustCompile(`(?:^|[=:;,\s"'])((?:/Users|/home)/[^/\s"':;,=]+)`)

// notHomes live under /home or /Users without being anyone's home
var notHomes = map[string]bool{
	"/home/linuxbrew": true,
	"/Users/Shared":   true,
}

// DetectHomes finds home directory prefixes used in server definitions
func DetectHomes(content, key string) []string {
	seen := map[string]bool{}
	eachString(content, key, func(_ string, value string) {
		for _, m := range homePattern.FindAllStringSubmatch(value, -1) {
			if !notHomes[m[1]] {
				seen[m[1]] = true
			}
		}
	})
	homes := make([]string, 0, len(seen))
	for h := range seen {
		homes = append(homes, h)
	}
	sort.Strings(homes)
	return homes
}

// RewriteHome replaces each from prefix with to in every command, args
// and env string of every server. Keys are never changed. When from is
// empty the prefixes are detected. It returns the new content and the
// number of strings changed.
func RewriteHome(content, key string, from []string, to string) (string, int, error) {
	if key == "" {
		key = DefaultServersKey
	}
	if len(from) == 0 {
		from = DetectHomes(content, key)
	}

	type edit struct{ path, value string }
	var edits []edit
	eachString(content, key, func(path, value string) {
		updated := value
		for _, prefix := range from {
			if prefix == "" || prefix == to {
				continue
			}
			updated = replacePrefix(updated, prefix, to)
		}
		if updated != value {
			edits = append(edits, edit{path: path, value: updated})
		}
	})

	out := content
	for _, e := range edits {
		var err error
		out, err = sjson.Set(out, e.path, e.value)
		if err != nil {
			return content, 0, errors.Wrapf(err, errors.ErrMCPConfig, "cannot update %s", e.path)
		}
	}
	return out, len(edits), nil
}

// eachString visits the command, args and env strings of every server
func eachString(content, key string, fn func(path, value string)) {
	gjson.Get(content, EscapeKey(key)).ForEach(func(name, server gjson.Result) bool {
		base := ServerPath(key, name.String())
		if cmd := server.Get("command"); cmd.Type == gjson.String {
			fn(base+".command", cmd.String())
		}
		for i, arg := range server.Get("args").Array() {
			if arg.Type == gjson.String {
				fn(base+".args."+strconv.Itoa(i), arg.String())
			}
		}
		server.Get("env").ForEach(func(k, v gjson.Result) bool {
			if v.Type == gjson.String {
				fn(base+".env."+EscapeKey(k.String()), v.String())
			}
			return true
		})
		return true
	})
}

// replacePrefix replaces prefix wherever it starts a path and ends at a
// path boundary, so /home/bob never matches inside /home/bobby or
// /srv/home/bob.
func replacePrefix(s, prefix, to string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, prefix)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := i + len(prefix)
		if (i > 0 && !isStart(s[i-1])) || (end < len(s) && !isBoundary(s[end])) {
			b.WriteString(s[:end])
			s = s[end:]
			continue
		}
		b.WriteString(s[:i])
		b.WriteString(to)
		s = s[end:]
	}
}

func isBoundary(c byte) bool {
	return c == '/' || c == ':' || c == ';' || c == ' ' || c == '"' || c == '\'' || c == ','
}

func isStart(c byte) bool {
	return c == '=' || c == ':' || c == ';' || c == ' ' || c == '"' || c == '\'' || c == ','
}

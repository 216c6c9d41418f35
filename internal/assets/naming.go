package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const defaultHashLength = 8

var hashToken = regexp.MustCompile(`\[hash(?::(\d+))?\]`)

// renderName expands a file name template such as "img/[name].[hash:7].[ext]"
// for the given source path and contents.
func renderName(tmpl, src string, contents []byte) string {
	base := filepath.Base(src)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	name := strings.TrimSuffix(base, filepath.Ext(base))

	sum := sha256.Sum256(contents)
	digest := hex.EncodeToString(sum[:])

	out := hashToken.ReplaceAllStringFunc(tmpl, func(tok string) string {
		n := defaultHashLength
		if m := hashToken.FindStringSubmatch(tok); m[1] != "" {
			if v, err := strconv.Atoi(m[1]); err == nil && v > 0 && v <= len(digest) {
				n = v
			}
		}
		return digest[:n]
	})

	return strings.NewReplacer("[name]", name, "[ext]", ext).Replace(out)
}

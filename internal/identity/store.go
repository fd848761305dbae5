package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lox/freezeout/internal/fileutil"
)

// PhraseFile is the file name of the server key phrase inside the data path.
const PhraseFile = "server.phrase"

// LoadOrCreate reads the signing key phrase from path, or generates a new key
// and writes its phrase there with owner-only permissions. created reports
// whether a new key was generated.
func LoadOrCreate(path string) (key *SigningKey, created bool, err error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		key, err = FromPhrase(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, false, fmt.Errorf("identity: load %s: %w", path, err)
		}
		return key, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, fmt.Errorf("identity: read %s: %w", path, err)
	}

	key, err = Generate()
	if err != nil {
		return nil, false, err
	}
	if err := fileutil.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return nil, false, fmt.Errorf("identity: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(key.Phrase()+"\n"), 0o600); err != nil {
		return nil, false, fmt.Errorf("identity: write %s: %w", path, err)
	}
	return key, true, nil
}

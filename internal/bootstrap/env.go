package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Loadenv reads the given dotenv files (".env" when none) into the process
// environment. Variables already set win. A missing file is not an error; the
// returned bool says whether anything was loaded.
func Loadenv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := false
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}

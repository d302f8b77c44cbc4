package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const LastRunFile = "last_run.yaml"

func Write(filename string, r *Run) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func Read(filename string) (*Run, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var r Run
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// BLAKE3File hashes a file's contents, used for the run-log checksum in
// the manifest and as upload integrity metadata for the S3 mirror.
func BLAKE3File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

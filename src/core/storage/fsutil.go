package storage

import (
	"bytes"
	"io"
	"os"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func fileSize(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return int(info.Size()), nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

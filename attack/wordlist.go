package attack

import (
	"bufio"
	"os"
)

const maxLineLen = 1024 * 1024

//Wordlist is a lazy sequence of candidate passwords, consumed once
type Wordlist interface {
	Scan() bool
	Text() string
	Err() error
}

//FileWordlist reads one candidate per line. Empty lines are candidates too,
//a trailing \r is dropped.
type FileWordlist struct {
	*bufio.Scanner
	file *os.File
	path string
}

//OpenWordlist opens the wordlist file, "-" reads from stdin
func OpenWordlist(path string) (*FileWordlist, error) {

	if path == "-" {
		return newFileWordlist(os.Stdin, "stdin"), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}

	if info.IsDir() {
		return nil, &SourceUnavailableError{Path: path, Err: errIsDirectory}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}

	return newFileWordlist(file, path), nil
}

func newFileWordlist(file *os.File, path string) *FileWordlist {

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)

	return &FileWordlist{
		Scanner: scanner,
		file:    file,
		path:    path,
	}
}

func (words *FileWordlist) Path() string {
	return words.path
}

func (words *FileWordlist) Close() error {
	if words.file == os.Stdin {
		return nil
	}
	return words.file.Close()
}

//SliceWordlist serves candidates from memory
type SliceWordlist struct {
	words []string
	index int
}

func NewSliceWordlist(words ...string) *SliceWordlist {
	return &SliceWordlist{words: words}
}

func (words *SliceWordlist) Scan() bool {
	if words.index >= len(words.words) {
		return false
	}
	words.index++
	return true
}

func (words *SliceWordlist) Text() string {
	return words.words[words.index-1]
}

func (words *SliceWordlist) Err() error {
	return nil
}

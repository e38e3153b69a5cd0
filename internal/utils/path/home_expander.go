package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	notDirectoryMessageConstant       = "working directory is not a directory"
	tildeSymbolConstant               = "~"
	notDirectoryTemplateConstant      = "%w: %s"
	directoryLookupTemplateConstant   = "unable to access working directory %s: %w"
	absolutePathErrorTemplateConstant = "unable to resolve working directory %s: %w"
)

// ErrNotDirectory indicates a working directory that exists but is not a directory.
var ErrNotDirectory = errors.New(notDirectoryMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts a leading tilde into the user's home directory. The
// home directory is looked up once.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	lookupOnce            sync.Once
	homeDirectory         string
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand rewrites "~" and "~/rest". Other forms, such as "~user", are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory := expander.lookupHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

// ResolveWorkingDirectory expands, absolutizes and checks a directory a process
// should start in. An empty path stays empty so the process inherits the caller's directory.
func (expander *HomeExpander) ResolveWorkingDirectory(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", nil
	}

	absolutePath, absoluteError := filepath.Abs(expander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, trimmedPath, absoluteError)
	}

	fileInformation, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(directoryLookupTemplateConstant, absolutePath, statError)
	}
	if !fileInformation.IsDir() {
		return "", fmt.Errorf(notDirectoryTemplateConstant, ErrNotDirectory, absolutePath)
	}
	return absolutePath, nil
}

func (expander *HomeExpander) lookupHomeDirectory() string {
	expander.lookupOnce.Do(func() {
		homeDirectory, lookupError := expander.homeDirectoryProvider()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}

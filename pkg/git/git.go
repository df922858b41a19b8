package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ChangeKind classifies how a file changed relative to the base reference.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeDeleted
	ChangeRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "A"
	case ChangeModified:
		return "M"
	case ChangeDeleted:
		return "D"
	case ChangeRenamed:
		return "R"
	}
	return "?"
}

// Reason returns the human-readable form used in affected reports.
func (k ChangeKind) Reason() string {
	switch k {
	case ChangeAdded:
		return "New"
	case ChangeModified:
		return "Modified"
	case ChangeDeleted:
		return "Deleted"
	case ChangeRenamed:
		return "Renamed"
	}
	return "Changed"
}

// ChangedFile is one file that differs between baseRef and HEAD. Path is
// absolute.
type ChangedFile struct {
	Path string
	Kind ChangeKind
}

// ChangedFiles lists the files that changed between baseRef and HEAD.
// Repository discovery starts at repoPath and walks upward, like git
// itself. A missing repository or an unresolvable reference is a fatal
// error for the caller.
func ChangedFiles(repoPath, baseRef string) ([]ChangedFile, error) {
	root, err := repoRoot(repoPath)
	if err != nil {
		return nil, err
	}

	if err := verifyRef(root, baseRef); err != nil {
		return nil, err
	}

	cmd := exec.Command("git", "-C", root, "diff", "--name-status", baseRef+"...HEAD")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff against %q failed: %s", baseRef, gitError(err))
	}

	return parseNameStatus(string(out), root), nil
}

// repoRoot finds the working tree root at or above path. A bare
// repository has no working tree and is rejected.
func repoRoot(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("no git repository with a working tree at or above %q: %s",
			path, gitError(err))
	}
	return strings.TrimSpace(string(out)), nil
}

func verifyRef(root, ref string) error {
	cmd := exec.Command("git", "-C", root, "rev-parse", "--verify", ref+"^{commit}")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("could not resolve git reference %q to a commit; ensure it exists", ref)
	}
	return nil
}

// parseNameStatus parses `git diff --name-status` output. Rename and copy
// lines carry two paths; the new path is kept for renames and copies count
// as additions. Deletions keep the old path so affected analysis can still
// match entities scanned from an earlier state.
func parseNameStatus(out, root string) []ChangedFile {
	var changed []ChangedFile

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		status := fields[0]
		path := fields[1]

		var kind ChangeKind
		switch status[0] {
		case 'A':
			kind = ChangeAdded
		case 'M':
			kind = ChangeModified
		case 'D':
			kind = ChangeDeleted
		case 'R':
			kind = ChangeRenamed
			if len(fields) >= 3 {
				path = fields[2]
			}
		case 'C':
			kind = ChangeAdded
			if len(fields) >= 3 {
				path = fields[2]
			}
		default:
			continue
		}

		changed = append(changed, ChangedFile{
			Path: filepath.Join(root, path),
			Kind: kind,
		})
	}

	return changed
}

func gitError(err error) string {
	if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return err.Error()
}

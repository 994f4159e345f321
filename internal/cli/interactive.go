package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/401-Nick/SecRev/internal/scan"
)

// TerminalConfirmer is the interactive review stage: it shows the
// candidate list and lets the user toggle files, suppress extensions for
// this run, or cancel before anything is submitted. Run-scoped extension
// exclusions are layered onto the scan policy via Suppress, so matching
// follows the same rules as discovery.
type TerminalConfirmer struct {
	in     *bufio.Reader
	out    io.Writer
	policy scan.FilterPolicy
}

func NewTerminalConfirmer(in io.Reader, out io.Writer, policy scan.FilterPolicy) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out, policy: policy}
}

type reviewEntry struct {
	file     scan.FileDescriptor
	selected bool
}

func (t *TerminalConfirmer) Confirm(files []scan.FileDescriptor) (scan.Confirmation, error) {
	if len(files) == 0 {
		return scan.Confirmation{}, nil
	}

	fmt.Fprintln(t.out, "\n--- File Review ---")
	suppressed := make(map[string]bool)
	entries := t.rebuild(files, t.policy)
	fmt.Fprintf(t.out, "Found %d file(s) to review:\n", len(entries))
	t.printList(entries)

	for {
		fmt.Fprintln(t.out, "\nOptions:")
		fmt.Fprintln(t.out, "  - Enter number(s) to toggle selection (e.g. '1 3 5').")
		fmt.Fprintln(t.out, "  - 'all' / 'none' to select or deselect everything.")
		fmt.Fprintln(t.out, "  - 'list' to show current selections.")
		fmt.Fprintln(t.out, "  - 'exclude .ext1 .ext2 ...' to drop extensions for this run.")
		fmt.Fprintln(t.out, "  - 'done' or Enter to proceed, 'cancel' to abort.")
		fmt.Fprint(t.out, "Your choice: ")

		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			// EOF on stdin counts as "done" so piped input cannot hang.
			break
		}
		input := strings.ToLower(strings.TrimSpace(line))

		switch {
		case input == "" || input == "done":
			return t.finish(entries, suppressed), nil
		case input == "cancel":
			return scan.Confirmation{Canceled: true}, nil
		case input == "list":
			t.printSelections(entries, suppressed)
		case input == "all":
			for i := range entries {
				entries[i].selected = true
			}
			fmt.Fprintln(t.out, "All listed files selected.")
		case input == "none":
			for i := range entries {
				entries[i].selected = false
			}
			fmt.Fprintln(t.out, "All listed files deselected.")
		case strings.HasPrefix(input, "exclude "):
			next := make(map[string]bool, len(suppressed))
			for k := range suppressed {
				next[k] = true
			}
			added := 0
			for _, raw := range strings.Fields(input)[1:] {
				ext := "." + strings.TrimLeft(strings.ToLower(raw), ".")
				if ext != "." && !next[ext] {
					next[ext] = true
					added++
				}
			}
			if added == 0 {
				fmt.Fprintln(t.out, "Usage: exclude .ext1 .ext2 ...")
				continue
			}
			effective, err := t.policy.Suppress(sortedKeys(next))
			if err != nil {
				fmt.Fprintf(t.out, "Cannot exclude: %v\n", err)
				continue
			}
			suppressed = next
			entries = t.rebuild(files, effective)
			fmt.Fprintln(t.out, "\n--- Updated File List ---")
			if len(entries) == 0 {
				fmt.Fprintln(t.out, "No files remaining after applying exclusions.")
				fmt.Fprintln(t.out, "All files excluded. 'done' proceeds with none, or 'cancel'.")
			} else {
				fmt.Fprintf(t.out, "Found %d file(s) matching current criteria:\n", len(entries))
				t.printList(entries)
			}
		default:
			t.toggle(entries, input)
		}
	}

	return t.finish(entries, suppressed), nil
}

// rebuild filters the original candidate list against the given policy
// and re-numbers it. Files always start selected.
func (t *TerminalConfirmer) rebuild(files []scan.FileDescriptor, policy scan.FilterPolicy) []reviewEntry {
	var entries []reviewEntry
	for _, fd := range files {
		if policy.Excluded(fd.RelPath) {
			continue
		}
		entries = append(entries, reviewEntry{file: fd, selected: true})
	}
	return entries
}

func (t *TerminalConfirmer) printList(entries []reviewEntry) {
	for i, e := range entries {
		fmt.Fprintf(t.out, "  %d. %s\n", i+1, e.file.RelPath)
	}
}

func (t *TerminalConfirmer) printSelections(entries []reviewEntry, suppressed map[string]bool) {
	fmt.Fprintln(t.out, "\nCurrent selections (* = selected):")
	if len(entries) == 0 {
		fmt.Fprintln(t.out, "  No files currently in the list.")
	}
	for i, e := range entries {
		marker := " "
		if e.selected {
			marker = "*"
		}
		fmt.Fprintf(t.out, "  %s %d. %s\n", marker, i+1, e.file.RelPath)
	}
	if len(suppressed) > 0 {
		fmt.Fprintf(t.out, "Run-scoped excluded extensions: %s\n", strings.Join(sortedKeys(suppressed), " "))
	}
}

func (t *TerminalConfirmer) toggle(entries []reviewEntry, input string) {
	for _, tok := range strings.Fields(input) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			fmt.Fprintln(t.out, "Invalid input. Enter numbers, 'all', 'none', 'list', 'exclude ...', 'done', or 'cancel'.")
			return
		}
		if n < 1 || n > len(entries) {
			fmt.Fprintf(t.out, "Warning: file number %d not found in the list.\n", n)
			continue
		}
		entries[n-1].selected = !entries[n-1].selected
		state := "DESELECTED"
		if entries[n-1].selected {
			state = "SELECTED"
		}
		fmt.Fprintf(t.out, "File %q is now %s.\n", entries[n-1].file.RelPath, state)
	}
}

func (t *TerminalConfirmer) finish(entries []reviewEntry, suppressed map[string]bool) scan.Confirmation {
	c := scan.Confirmation{SuppressedExts: sortedKeys(suppressed)}
	for _, e := range entries {
		if e.selected {
			c.Files = append(c.Files, e.file)
		}
	}
	if len(c.Files) == 0 {
		fmt.Fprintln(t.out, "No files selected for analysis.")
	} else {
		fmt.Fprintf(t.out, "\nProceeding with %d selected file(s).\n", len(c.Files))
	}
	return c
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

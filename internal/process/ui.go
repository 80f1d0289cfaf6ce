// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfmeta/internal/filename"
	"github.com/pdiddy/pdfmeta/pkg/types"
)

// ChoiceKind is what the user decided at the match-selection prompt.
type ChoiceKind int

const (
	ChoiceSelect ChoiceKind = iota
	ChoiceSkip
	ChoiceRetry
	ChoiceManualDOI
	ChoiceQuit
)

// Choice is the outcome of the match-selection prompt.
type Choice struct {
	Kind  ChoiceKind
	Index int    // candidate index for ChoiceSelect
	DOI   string // user-supplied DOI for ChoiceManualDOI
}

// Confirmation is the outcome of the metadata review prompt.
type Confirmation int

const (
	ConfirmApply Confirmation = iota
	ConfirmSkip
	ConfirmQuit
)

// ErrorChoice is the outcome of the error prompt.
type ErrorChoice int

const (
	ErrorRetry ErrorChoice = iota
	ErrorSkip
	ErrorQuit
)

// UI prompts the user during interactive processing. Reads come from In so
// tests can script the session; all output goes to Out.
type UI struct {
	In      io.Reader
	Out     io.Writer
	Verbose bool
	Quiet   bool

	reader *bufio.Reader
}

func (u *UI) readLine() (string, bool) {
	if u.reader == nil {
		u.reader = bufio.NewReader(u.In)
	}
	line, err := u.reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF behaves as skip.
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(line)), true
}

// SelectMatch shows the ranked candidates and returns the user's choice.
// In quiet mode no prompt is shown and the file is skipped.
func (u *UI) SelectMatch(matches []types.Match, name string, hints filename.Hints) Choice {
	if u.Quiet {
		return Choice{Kind: ChoiceSkip}
	}

	plural := "es"
	if len(matches) == 1 {
		plural = ""
	}
	fmt.Fprintf(u.Out, "\nFound %d potential match%s for: %s\n\n", len(matches), plural, name)

	var hintParts []string
	if hints.Author != "" {
		hintParts = append(hintParts, "Author: "+hints.Author)
	}
	if hints.Year != "" {
		hintParts = append(hintParts, "Year: "+hints.Year)
	}
	if hints.Title != "" {
		hintParts = append(hintParts, "Title: "+hints.Title)
	}
	if len(hintParts) > 0 {
		fmt.Fprintf(u.Out, "Current filename info: %s\n\n", strings.Join(hintParts, ", "))
	}

	for i, m := range matches {
		fmt.Fprintf(u.Out, "%d. %s %s CONFIDENCE (%.2f)\n", i+1, tierStars(m.Tier()), m.Tier(), m.Score)
		fmt.Fprintf(u.Out, "   Title: %s\n", m.Title)
		if len(m.Authors) > 0 {
			fmt.Fprintf(u.Out, "   Authors: %s\n", formatAuthors(m.Authors))
		}
		if m.Year != "" {
			fmt.Fprintf(u.Out, "   Year: %s\n", m.Year)
		}
		if m.Journal != "" {
			fmt.Fprintf(u.Out, "   Journal: %s\n", m.Journal)
		}
		fmt.Fprintf(u.Out, "   DOI: %s\n\n", m.DOI)
	}

	for {
		fmt.Fprintf(u.Out, "Choose: [1-%d] Select match | [s]kip | [r]etry | [m]anual DOI | [q]uit\n> ", len(matches))
		choice, ok := u.readLine()
		if !ok {
			fmt.Fprintln(u.Out, "\nEOF detected, skipping...")
			return Choice{Kind: ChoiceSkip}
		}

		switch choice {
		case "q":
			return Choice{Kind: ChoiceQuit}
		case "s":
			return Choice{Kind: ChoiceSkip}
		case "r":
			return Choice{Kind: ChoiceRetry}
		case "m":
			fmt.Fprint(u.Out, "Enter DOI: ")
			doi, ok := u.readLine()
			if !ok || doi == "" {
				fmt.Fprintln(u.Out, "No DOI entered, skipping...")
				return Choice{Kind: ChoiceSkip}
			}
			return Choice{Kind: ChoiceManualDOI, DOI: doi}
		default:
			if idx, err := strconv.Atoi(choice); err == nil {
				if idx >= 1 && idx <= len(matches) {
					return Choice{Kind: ChoiceSelect, Index: idx - 1}
				}
				fmt.Fprintf(u.Out, "Please enter a number between 1 and %d\n", len(matches))
			} else {
				fmt.Fprintf(u.Out, "Invalid choice: %s\n", choice)
			}
		}
	}
}

// ConfirmMetadata shows the assembled metadata and proposed filename and
// asks for apply/skip/quit. Quiet mode applies without prompting.
func (u *UI) ConfirmMetadata(name string, md types.MetadataUpdate, newName string) Confirmation {
	if u.Quiet {
		return ConfirmApply
	}

	fmt.Fprintf(u.Out, "\nReview metadata update:\n\nFile: %s\n\nMetadata to write:\n", name)
	fmt.Fprintf(u.Out, "  Title:   %s\n", md.Title)
	fmt.Fprintf(u.Out, "  Authors: %s\n", md.Authors)
	if md.Year != "" {
		fmt.Fprintf(u.Out, "  Year:    %s\n", md.Year)
	}
	if md.Journal != "" {
		fmt.Fprintf(u.Out, "  Journal: %s\n", md.Journal)
	}
	if md.DOI != "" {
		fmt.Fprintf(u.Out, "  DOI:     %s\n", md.DOI)
	}
	if md.ISBN != "" {
		fmt.Fprintf(u.Out, "  ISBN:    %s\n", md.ISBN)
	}
	fmt.Fprintf(u.Out, "\nNew filename: %s\n\n", newName)

	for {
		fmt.Fprint(u.Out, "[a]pply | [s]kip | [q]uit\n> ")
		choice, ok := u.readLine()
		if !ok {
			fmt.Fprintln(u.Out, "\nEOF detected, skipping...")
			return ConfirmSkip
		}
		switch choice {
		case "a":
			return ConfirmApply
		case "s":
			return ConfirmSkip
		case "q":
			return ConfirmQuit
		default:
			fmt.Fprintf(u.Out, "Invalid choice: %s\n", choice)
		}
	}
}

// HandleError reports an error and asks how to proceed. Retry is offered
// only when retryable.
func (u *UI) HandleError(name string, err error, retryable bool) ErrorChoice {
	fmt.Fprintf(u.Out, "\nError processing: %s\nError: %v\n\n", name, err)

	prompt := "[s]kip | [q]uit\n> "
	if retryable {
		prompt = "[r]etry | [s]kip | [q]uit\n> "
	}

	for {
		fmt.Fprint(u.Out, prompt)
		choice, ok := u.readLine()
		if !ok {
			fmt.Fprintln(u.Out, "\nEOF detected, skipping...")
			return ErrorSkip
		}
		switch {
		case choice == "q":
			return ErrorQuit
		case choice == "s":
			return ErrorSkip
		case choice == "r" && retryable:
			return ErrorRetry
		default:
			fmt.Fprintf(u.Out, "Invalid choice: %s\n", choice)
		}
	}
}

// PrintSummary writes the end-of-run totals.
func (u *UI) PrintSummary(total, completed, skipped, failed int, logPath string) {
	if u.Quiet {
		return
	}
	line := strings.Repeat("=", 70)
	fmt.Fprintf(u.Out, "\n%s\nPROCESSING SUMMARY\n%s\n\n", line, line)
	fmt.Fprintf(u.Out, "Total files:  %d\n", total)
	fmt.Fprintf(u.Out, "Completed:    %d\n", completed)
	fmt.Fprintf(u.Out, "Skipped:      %d\n", skipped)
	fmt.Fprintf(u.Out, "Failed:       %d\n", failed)
	if completed > 0 && total > 0 {
		fmt.Fprintf(u.Out, "\nSuccess rate: %.1f%%\n", float64(completed)/float64(total)*100)
	}
	if logPath != "" {
		fmt.Fprintf(u.Out, "\nLog file:     %s\n", logPath)
	}
	fmt.Fprintf(u.Out, "%s\n", line)
}

// Info prints unless quiet.
func (u *UI) Info(format string, args ...any) {
	if !u.Quiet {
		fmt.Fprintf(u.Out, format, args...)
	}
}

// Verbosef prints only in verbose mode.
func (u *UI) Verbosef(format string, args ...any) {
	if u.Verbose && !u.Quiet {
		fmt.Fprintf(u.Out, format, args...)
	}
}

func tierStars(t types.ConfidenceTier) string {
	switch t {
	case types.TierHigh:
		return "***"
	case types.TierMedium:
		return "**"
	default:
		return "*"
	}
}

func formatAuthors(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, "; ")
	}
	return strings.Join(authors[:3], "; ") + fmt.Sprintf("; ... (%d total)", len(authors))
}

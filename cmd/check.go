package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/kirsrus/7zlist/pkg/sevenz"
	"github.com/spf13/cobra"
)

// ErrMismatch листинг не совпадает с эталоном
var ErrMismatch = errors.New("листинг не совпадает с эталоном")

var checkCmd = &cobra.Command{
	Use:   "check <7z_listing_file> <ground_truth.json>",
	Short: "Сравнивает листинг с эталонным JSON",
	Long: `Разбирает листинг и сравнивает полученные записи по имени с эталонным JSON-массивом,
ранее сохранённым основной командой. Выводит недостающие и лишние записи. При наличии расхождений
программа завершается с ненулевым кодом.`,
	Args: cobra.ExactArgs(2),
	RunE: checkRunE,
}

func checkRunE(cmd *cobra.Command, args []string) error {
	onlyLog = true
	log, closeLog := setupLog()
	defer closeLog()

	listing, err := sevenz.NewListing(args[0], log)
	if err != nil {
		return errors.Trace(err)
	}

	truth, err := sevenz.LoadGroundTruth(args[1])
	if err != nil {
		return errors.Trace(err)
	}

	diff := sevenz.Compare(listing.Entries, truth)
	printDiff(cmd.OutOrStdout(), diff)

	if !diff.Empty() {
		return errors.Annotatef(ErrMismatch, "недостающих %d, лишних %d", len(diff.Missing), len(diff.Extra))
	}
	return nil
}

func entryKind(e sevenz.Entry) string {
	if e.IsDirectory {
		return "DIR"
	}
	return "FILE"
}

// printDiff выводит отчёт о сравнении
func printDiff(w io.Writer, diff sevenz.Diff) {
	line := strings.Repeat("=", 40)

	_, _ = fmt.Fprintln(w, line)
	_, _ = fmt.Fprintln(w, "VALIDATION RESULTS")
	_, _ = fmt.Fprintln(w, line)

	if diff.Empty() {
		_, _ = fmt.Fprintln(w, "All entries match the ground truth!")
		return
	}

	if len(diff.Missing) > 0 {
		_, _ = fmt.Fprintln(w, "Missing entries (in ground truth, not in listing):")
		for _, e := range diff.Missing {
			_, _ = fmt.Fprintf(w, "  - [%s] %s\n", entryKind(e), e.Name)
		}
	} else {
		_, _ = fmt.Fprintln(w, "No missing entries.")
	}

	if len(diff.Extra) > 0 {
		_, _ = fmt.Fprintln(w, "\nExtra entries (in listing, not in ground truth):")
		for _, e := range diff.Extra {
			_, _ = fmt.Fprintf(w, "  - [%s] %s\n", entryKind(e), e.Name)
		}
	} else {
		_, _ = fmt.Fprintln(w, "No extra entries.")
	}

	_, _ = fmt.Fprintln(w, line)
}

// Package export renders a meeting's archived polls as CSV for
// download by the host.
package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aasfg1234/vote-system/internal/domain"
)

const (
	bom    = "\uFEFF"
	header = "題目,選項,票數,投票者名單"
)

// HistoryCSV renders one row per option per archived poll, with a blank
// separator row between polls. Output is UTF-8 with BOM and RFC4180
// quote escaping so spreadsheet apps open it cleanly.
func HistoryCSV(history []domain.Snapshot) string {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(header)
	b.WriteString("\n")

	for _, record := range history {
		for _, opt := range record.Options {
			voters := make([]string, 0)
			for name, choices := range record.VoterDetails {
				for _, id := range choices {
					if id == opt.ID {
						voters = append(voters, name)
						break
					}
				}
			}
			sort.Strings(voters)

			b.WriteString(quote("[歷史] " + record.Question))
			b.WriteString(",")
			b.WriteString(quote(opt.Text))
			b.WriteString(",")
			b.WriteString(strconv.Itoa(opt.Count))
			b.WriteString(",")
			b.WriteString(quote(strings.Join(voters, "; ")))
			b.WriteString("\n")
		}
		b.WriteString(",,,\n")
	}

	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

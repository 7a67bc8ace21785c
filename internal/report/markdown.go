package report

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var tablePattern = regexp.MustCompile(`(?is)<table\b[^>]*>.*?</table>`)

// toMarkdown converts an HTML document to Markdown. Tables are rendered
// separately and spliced back in, since the converter flattens them to text.
func toMarkdown(html string) (string, error) {
	var tables []string
	html = tablePattern.ReplaceAllStringFunc(html, func(table string) string {
		tables = append(tables, tableToMarkdown(table))
		return fmt.Sprintf("<p>%s</p>", placeholder(len(tables)-1))
	})

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	for i, table := range tables {
		markdown = strings.Replace(markdown, placeholder(i), strings.TrimSuffix(table, "\n"), 1)
	}
	return markdown + "\n", nil
}

func placeholder(i int) string {
	return fmt.Sprintf("GRSHELVESTABLE%dEND", i)
}

// tableToMarkdown renders one HTML table as a Markdown table. The header is
// the thead row, or the first row when there is no thead.
func tableToMarkdown(tableHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return tableHTML
	}

	var builder strings.Builder
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headerRow := table.Find("thead tr").First()
		dataRows := table.Find("tbody tr")
		if headerRow.Length() == 0 {
			// the parser wraps bare rows in an implicit tbody
			rows := table.Find("tr")
			headerRow = rows.First()
			dataRows = rows.Slice(0, 0)
			if rows.Length() > 1 {
				dataRows = rows.Slice(1, goquery.ToEnd)
			}
		}
		headers := cells(headerRow)
		if len(headers) == 0 {
			return
		}

		writeRow(&builder, headers)
		sep := make([]string, len(headers))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&builder, sep)

		dataRows.Each(func(_ int, row *goquery.Selection) {
			if c := cells(row); len(c) > 0 {
				writeRow(&builder, c)
			}
		})
	})
	return builder.String()
}

func cells(row *goquery.Selection) []string {
	var out []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		out = append(out, strings.ReplaceAll(text, "|", `\|`))
	})
	return out
}

func writeRow(b *strings.Builder, cols []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString(" |\n")
}

package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

// systemPrompt fixes the model's role and output contract. Rows come
// back pipe-delimited instead of JSON because malformed rows can then
// be dropped individually instead of poisoning a whole document.
const systemPrompt = "You are a financial statement parser for US bank and credit card statements.\n\n" +
	"Task:\n" +
	"- Parse EVERY transaction line you are given.\n" +
	"- Output one transaction per line, pipe-delimited, with EXACTLY these 5 fields:\n" +
	"  date|description|amount|balance|category\n\n" +
	"Field rules:\n" +
	"- \"date\": ISO format YYYY-MM-DD. If a line's date has no year, use the statement year given in the request.\n" +
	"- \"description\": the merchant or transfer description, cleaned of reference numbers.\n" +
	"- \"amount\": signed decimal, negative for money OUT, positive for money IN. Keep the sign exactly as printed.\n" +
	"- \"balance\": running balance if the line shows one, otherwise empty.\n" +
	"- \"category\": one short category word such as Groceries, Dining, Transport, Salary, Transfer, Fees, Interest, Shopping, Utilities, or Other.\n\n" +
	"Return ONLY the pipe-delimited rows.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ``` or any Markdown.\n" +
	"Do NOT add headers, summaries, or commentary.\n"

var fileNameYear = regexp.MustCompile(`(20\d{2})`)

// yearFromFileName pulls a four-digit statement year out of the source
// file name, e.g. "chase_2024_01.pdf". Empty when none is present.
func yearFromFileName(fileName string) string {
	return fileNameYear.FindString(fileName)
}

// buildUserPrompt assembles the per-batch request: the statement
// context followed by the transaction lines to parse.
func buildUserPrompt(fileName string, b domain.Batch) string {
	var sb strings.Builder

	if year := yearFromFileName(fileName); year != "" {
		fmt.Fprintf(&sb, "Statement year: %s\n", year)
	}
	if b.Header != "" {
		fmt.Fprintf(&sb, "Account section: %s\n", b.Header)
	}
	sb.WriteString("\nTransaction lines:\n")
	sb.WriteString(b.Text())
	sb.WriteString("\n")

	return sb.String()
}

// Package render выводит экраны клиента в терминал.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/screen"
)

const cardDateLayout = "Jan 2, 2006"

// Money форматирует сумму с разделителями разрядов: $1,234.50.
func Money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// CardDate форматирует дату чека для списка. Неразборчивая дата выводится как есть.
func CardDate(r model.Receipt) string {
	if t, ok := r.ParsedDate(); ok {
		return t.Format(cardDateLayout)
	}
	return r.Date
}

// Transactions выводит таблицу чеков в переданном порядке.
func Transactions(w io.Writer, receipts []model.Receipt, query string) error {
	if len(receipts) == 0 {
		if query != "" {
			_, err := fmt.Fprintf(w, "No transactions match %q.\n", query)
			return err
		}
		_, err := fmt.Fprintln(w, "No transactions yet. Scan a receipt to get started.")
		return err
	}

	table := newTable(w, "Date", "Vendor", "Total", "ID")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	for _, r := range receipts {
		table.Append([]string{CardDate(r), r.DisplayVendor(), Money(r.Amount()), r.ID})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "%d %s\n", len(receipts), plural(len(receipts), "receipt", "receipts"))
	return err
}

// Dashboard выводит сводку и последние чеки.
func Dashboard(w io.Writer, v screen.DashboardView) error {
	s := v.Stats

	fmt.Fprintln(w, v.Greeting)
	fmt.Fprintln(w, "Here's your spending overview")
	fmt.Fprintln(w)

	table := newTable(w)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{"Total Spent", Money(s.TotalSpent)},
		{"This Month", Money(s.MonthlySpent)},
		{"Avg / Receipt", Money(s.AvgPerReceipt)},
		{"Top Vendor", s.TopVendor},
		{"Total Receipts", humanize.Comma(int64(s.ReceiptCount))},
	})
	table.Render()

	if len(v.Recent) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Transactions")

		recent := newTable(w)
		recent.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		for _, r := range v.Recent {
			recent.Append([]string{CardDate(r), r.DisplayVendor(), Money(r.Amount())})
		}
		recent.Render()
	}

	if !v.UpdatedAt.IsZero() {
		_, err := fmt.Fprintf(w, "\nUpdated %s\n", v.UpdatedAt.Format(time.Kitchen))
		return err
	}
	return nil
}

// Detail выводит карточку чека. now нужен для относительного времени сканирования.
func Detail(w io.Writer, d screen.ReceiptDetails, now time.Time) error {
	image := "no"
	if d.HasImage {
		image = "yes"
	}

	scanned := d.ScannedAt
	if !d.CreatedAt.IsZero() {
		scanned = fmt.Sprintf("%s (%s)", d.ScannedAt, humanize.RelTime(d.CreatedAt, now, "ago", "from now"))
	}

	fmt.Fprintf(w, "%s\n%s\n\n", d.Vendor, "$"+d.Total)

	table := newTable(w)
	table.AppendBulk([][]string{
		{"Date", d.Date},
		{"Receipt ID", d.ShortID},
		{"Scanned", scanned},
		{"Image", image},
	})
	table.Render()
	return nil
}

// Profile выводит экран настроек.
func Profile(w io.Writer, p screen.Profile, onboarded bool) error {
	table := newTable(w)
	table.AppendBulk([][]string{
		{"Name", fmt.Sprintf("%s (%s)", p.DisplayName, p.Initial)},
		{"Email", p.Email},
		{"Onboarded", fmt.Sprintf("%t", onboarded)},
	})
	table.Render()
	return nil
}

// Slides выводит страницы онбординга.
func Slides(w io.Writer, slides []screen.Slide) error {
	for i, s := range slides {
		if _, err := fmt.Fprintf(w, "%d/%d  %s\n      %s\n\n", i+1, len(slides), s.Title, s.Description); err != nil {
			return err
		}
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	if len(header) > 0 {
		table.SetHeader(header)
		table.SetAutoFormatHeaders(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	}
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

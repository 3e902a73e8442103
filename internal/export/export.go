package export

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

// Archive is a downloadable zip bundle, base64 encoded for JSON transport.
type Archive struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

var csvHeader = []string{
	"purchase_id", "timestamp", "sku", "item_name", "quantity", "unit_price",
	"subtotal", "discount", "voucher", "grand_total", "payment_method", "paid",
}

// Build renders every transaction into transactions.csv inside a zip archive.
// Each line item gets its own CSV row; receipt columns repeat per row so a
// spreadsheet filter on any line still shows the full sale context.
func Build(transactions []txn.Transaction, now time.Time) (Archive, error) {
	var csvBuf bytes.Buffer
	writer := csv.NewWriter(&csvBuf)
	if err := writer.Write(csvHeader); err != nil {
		return Archive{}, fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range transactions {
		when := time.Unix(t.Timestamp, 0).UTC().Format(time.RFC3339)
		for _, item := range t.Items {
			row := []string{
				t.PurchaseID,
				when,
				item.SKU,
				item.Name,
				strconv.FormatInt(item.Quantity, 10),
				item.UnitPrice.String(),
				t.Receipt.Subtotal.String(),
				t.Receipt.Discount.String(),
				t.Voucher.String(),
				t.Receipt.Total.String(),
				t.Payment.Method,
				strconv.FormatBool(t.Payment.Paid),
			}
			if err := writer.Write(row); err != nil {
				return Archive{}, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return Archive{}, fmt.Errorf("flush csv: %w", err)
	}

	var zipBuf bytes.Buffer
	archive := zip.NewWriter(&zipBuf)
	entry, err := archive.Create("transactions.csv")
	if err != nil {
		return Archive{}, fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := entry.Write(csvBuf.Bytes()); err != nil {
		return Archive{}, fmt.Errorf("write zip entry: %w", err)
	}
	if err := archive.Close(); err != nil {
		return Archive{}, fmt.Errorf("close zip: %w", err)
	}

	return Archive{
		Filename:    fmt.Sprintf("plantpass-sales-%s.zip", now.UTC().Format("20060102-150405")),
		Content:     base64.StdEncoding.EncodeToString(zipBuf.Bytes()),
		ContentType: "application/zip",
	}, nil
}

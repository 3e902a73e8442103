package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/UIUC-Hort-Club/PlantPass/internal/export"
	"github.com/UIUC-Hort-Club/PlantPass/internal/pricing"
	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

func TestBuildArchive(t *testing.T) {
	now := time.Date(2026, 4, 18, 16, 30, 0, 0, time.UTC)
	transactions := []txn.Transaction{
		{
			PurchaseID: "KXQ-PLM",
			Timestamp:  time.Date(2026, 4, 18, 10, 5, 0, 0, time.UTC).Unix(),
			Items: []txn.LineItem{
				{SKU: "monstera", Name: "Monstera", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
				{SKU: "pothos", Name: "Golden Pothos", Quantity: 1, UnitPrice: decimal.RequireFromString("8")},
			},
			Voucher: decimal.RequireFromString("3"),
			Payment: txn.Payment{Method: "cash", Paid: true},
			Receipt: pricing.Receipt{
				Subtotal: decimal.RequireFromString("33"),
				Discount: decimal.RequireFromString("3"),
				Total:    decimal.RequireFromString("30"),
			},
		},
	}

	archive, err := export.Build(transactions, now)
	require.NoError(t, err)
	require.Equal(t, "plantpass-sales-20260418-163000.zip", archive.Filename)
	require.Equal(t, "application/zip", archive.ContentType)

	raw, err := base64.StdEncoding.DecodeString(archive.Content)
	require.NoError(t, err)
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, reader.File, 1)
	require.Equal(t, "transactions.csv", reader.File[0].Name)

	entry, err := reader.File[0].Open()
	require.NoError(t, err)
	defer entry.Close()
	content, err := io.ReadAll(entry)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per line item")
	require.Equal(t, "purchase_id", rows[0][0])
	require.Equal(t, []string{
		"KXQ-PLM", "2026-04-18T10:05:00Z", "monstera", "Monstera", "2", "12.5",
		"33", "3", "3", "30", "cash", "true",
	}, rows[1])
	require.Equal(t, "pothos", rows[2][2])
}

func TestBuildEmpty(t *testing.T) {
	archive, err := export.Build(nil, time.Date(2026, 4, 18, 16, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(archive.Content)
	require.NoError(t, err)
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	entry, err := reader.File[0].Open()
	require.NoError(t, err)
	defer entry.Close()
	content, err := io.ReadAll(entry)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

package models

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mmdatafocus/cityreport_bot/config"
)

// Requires a reachable MySQL via the DB_* env vars.
func TestReportStoreRoundTrip(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires a database)")
	}

	config.ConnectDatabaseWithRetry()
	MigrateTable()

	ctx := context.Background()
	store := NewReportStore()

	ownerID := int64(987654321)
	lat, lon := 47.91, 106.88

	first, err := store.Append(ctx, &Report{
		UserID:      ownerID,
		Username:    "integration",
		Description: "pothole",
		PhotoPath:   "data/it_1.jpg",
		EmailStatus: "sent",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := store.Append(ctx, &Report{
		UserID:      ownerID,
		Username:    "integration",
		Description: "streetlight",
		PhotoPath:   "data/it_2.jpg",
		Lat:         &lat,
		Lon:         &lon,
		EmailStatus: "error: SendError: connection refused",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second <= first {
		t.Fatalf("ids not monotonic: %d then %d", first, second)
	}

	rows, err := store.ListByOwner(ctx, ownerID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("expected at least 2 rows, got %d", len(rows))
	}
	if rows[0].ID != second {
		t.Fatalf("newest first expected, got id %d", rows[0].ID)
	}
	if rows[0].Lat == nil || *rows[0].Lat != lat {
		t.Fatalf("lat lost: %+v", rows[0])
	}
	if rows[1].Lat != nil {
		t.Fatalf("nil lat expected on first row: %+v", rows[1])
	}
	if rows[0].EmailStatus != "error: SendError: connection refused" {
		t.Fatalf("status not stored verbatim: %q", rows[0].EmailStatus)
	}
}

package daemon

import (
	"testing"
	"time"
)

func TestTimeSeriesRecorder_GetLastRecords(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	type args struct {
		last time.Duration
	}
	tests := []struct {
		name    string
		records []time.Time
		args    args
		want    int
	}{
		{
			name:    "no records",
			records: nil,
			args:    args{last: time.Minute},
			want:    0,
		},
		{
			name: "only recent records",
			records: []time.Time{
				now.Add(-3 * time.Minute),
				now.Add(-2 * time.Minute),
				now.Add(-61 * time.Second),
				now.Add(-20 * time.Second),
				now.Add(-time.Second),
			},
			args: args{last: time.Minute},
			want: 2,
		},
		{
			name: "all records",
			records: []time.Time{
				now.Add(-50 * time.Second),
				now.Add(-10 * time.Second),
			},
			args: args{last: time.Hour},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTimeSeriesRecorder(10)
			for _, rec := range tt.records {
				r.AddRecord(rec)
			}
			got := r.GetLastRecords(now, tt.args.last)
			if len(got) != tt.want {
				t.Fatalf("GetLastRecords() returned %d records, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].After(got[i-1]) {
					t.Errorf("records should be newest first: %v", got)
				}
			}
		})
	}
}

func TestTimeSeriesRecorder_MaxRecordCount(t *testing.T) {
	r := NewTimeSeriesRecorder(3)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r.AddRecord(base.Add(time.Duration(i) * time.Minute))
	}

	records := r.GetRecords()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if !records[0].Equal(base.Add(2 * time.Minute)) {
		t.Errorf("oldest records should be evicted first, got %v", records)
	}
	if !r.GetLastRecord().Equal(base.Add(4 * time.Minute)) {
		t.Errorf("GetLastRecord() = %v", r.GetLastRecord())
	}
	if got := formatTimes(records[:1]); got[0] != "2024-03-01T12:02:00Z" {
		t.Errorf("formatTimes() = %v", got)
	}
}

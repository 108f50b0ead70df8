package worker

import "testing"

func TestChanSizePerWorker(t *testing.T) {
	tests := []struct {
		name      string
		queueSize int
		workers   int
		want      int
	}{
		{"even split", 256, 4, 64},
		{"uneven split rounds down", 10, 3, 3},
		{"queue smaller than workers", 2, 4, 1},
		{"zero queue", 0, 4, 1},
		{"zero workers", 256, 0, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chanSizePerWorker(tt.queueSize, tt.workers); got != tt.want {
				t.Errorf("chanSizePerWorker(%d, %d) = %d, want %d", tt.queueSize, tt.workers, got, tt.want)
			}
		})
	}
}

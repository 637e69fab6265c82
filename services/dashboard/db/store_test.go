package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestCellString(t *testing.T) {
	var num pgtype.Numeric
	_ = num.Scan("24.7136")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, ""},
		{"text", "RIY0001", "RIY0001"},
		{"bytes", []byte("abc"), "abc"},
		{"date", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "2024-01-05"},
		{"timestamp", time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), "2024-01-05T09:30:00Z"},
		{"float", 46.675, "46.675"},
		{"int", int64(3), "3"},
		{"int32", int32(2), "2"},
		{"bool", true, "true"},
		{"numeric", num, "24.7136"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellString(tt.in))
		})
	}
}

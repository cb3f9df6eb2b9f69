package postgres

import "time"

// nullableTime は DATE 列に書き込む値を返します。nil は NULL になります。
func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

// dateOnly は DATE 列から読み込んだ値を UTC の日付に揃えます。
func dateOnly(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	t := value.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

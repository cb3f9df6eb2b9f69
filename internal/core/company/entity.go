package company

import "time"

// NumberingPolicy は社員番号の採番ルールです。
type NumberingPolicy struct {
	Prefix      string
	Digits      int
	IncludeYear bool
}

// Company は会社エンティティです。Numbering が nil の場合は既定の採番ルールを使用します。
type Company struct {
	ID        string
	Name      string
	Numbering *NumberingPolicy
	CreatedAt time.Time
	UpdatedAt time.Time
}

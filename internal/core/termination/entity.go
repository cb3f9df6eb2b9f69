package termination

import (
	"time"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/relation"
)

// Snapshot は契約終了時点で共有されていたデータの保管用コピーです。保持期限の経過後に削除されます。
type Snapshot struct {
	ID             string
	ContractID     string
	EmployeeID     string
	PersonID       string
	CompanyID      string
	Document       Document
	RetentionUntil time.Time
	CreatedAt      time.Time
}

// Document は Snapshot の本文です。
type Document struct {
	EmployeeNumber string                   `json:"employee_number"`
	Fields         map[string]string        `json:"fields"`
	Relations      map[relation.Kind]any    `json:"relations"`
	Attachments    []*attachment.Attachment `json:"attachments"`
	TerminatedAt   time.Time                `json:"terminated_at"`
}

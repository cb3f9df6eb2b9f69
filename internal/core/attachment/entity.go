package attachment

import "time"

// OwnerType は添付ファイルの所有者種別です。
type OwnerType string

const (
	OwnerTypeProfile  OwnerType = "profile"
	OwnerTypeEmployee OwnerType = "employee"
)

// Category は添付ファイルの分類です。共有設定の単位になります。
type Category string

const (
	CategoryProfilePhoto    Category = "profile_photo"
	CategoryDocument        Category = "document"
	CategoryCertificateFile Category = "certificate_file"
)

// AllCategories は定義済みの全分類です。
var AllCategories = []Category{CategoryProfilePhoto, CategoryDocument, CategoryCertificateFile}

// ParseCategory は文字列を Category に変換します。
func ParseCategory(v string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == v {
			return c, true
		}
	}
	return "", false
}

// SourceType は添付ファイルの由来です。
type SourceType string

const (
	SourceUploaded SourceType = "uploaded"
	SourceSynced   SourceType = "synced"
)

// Attachment は添付ファイルのメタデータです。
type Attachment struct {
	ID                     string     `json:"id"`
	OwnerType              OwnerType  `json:"owner_type"`
	OwnerID                string     `json:"owner_id"`
	Category               Category   `json:"category"`
	FileName               string     `json:"file_name"`
	StoragePath            string     `json:"storage_path"`
	MimeType               string     `json:"mime_type,omitempty"`
	SizeBytes              int64      `json:"size_bytes"`
	SourceType             SourceType `json:"source_type"`
	SourceContractID       *string    `json:"source_contract_id,omitempty"`
	SourceAttachmentID     *string    `json:"source_attachment_id,omitempty"`
	DeletableOnTermination bool       `json:"deletable_on_termination"`
	FrozenAt               *time.Time `json:"frozen_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

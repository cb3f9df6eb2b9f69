package sharing

import (
	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/relation"
)

// AllowsRelation は関連データ種別の同期が許可されているかを返します。
func (c *Config) AllowsRelation(kind relation.Kind) bool {
	if c == nil {
		return false
	}
	switch kind {
	case relation.KindEducation:
		return c.ShareEducation
	case relation.KindCareer:
		return c.ShareCareer
	case relation.KindCertificate:
		return c.ShareCertificates
	case relation.KindLanguage:
		return c.ShareLanguages
	case relation.KindFamily:
		return c.ShareFamily
	default:
		return false
	}
}

// AllowsCategory は添付分類の同期が許可されているかを返します。
func (c *Config) AllowsCategory(category attachment.Category) bool {
	if c == nil {
		return false
	}
	switch category {
	case attachment.CategoryProfilePhoto:
		return c.ShareProfilePhoto
	case attachment.CategoryDocument:
		return c.ShareDocuments
	case attachment.CategoryCertificateFile:
		return c.ShareCertificateFiles
	default:
		return false
	}
}

// Relations は許可されている関連データ種別を定義順に返します。
func (c *Config) Relations() []relation.Kind {
	var out []relation.Kind
	for _, k := range relation.AllKinds {
		if c.AllowsRelation(k) {
			out = append(out, k)
		}
	}
	return out
}

// Categories は許可されている添付分類を定義順に返します。
func (c *Config) Categories() []attachment.Category {
	var out []attachment.Category
	for _, cat := range attachment.AllCategories {
		if c.AllowsCategory(cat) {
			out = append(out, cat)
		}
	}
	return out
}

package sharing

import "time"

// Config は契約ごとのデータ共有設定です。契約と一対一で存在します。
type Config struct {
	ContractID string

	ShareBasic        bool
	ShareContact      bool
	ShareEducation    bool
	ShareCareer       bool
	ShareCertificates bool
	ShareLanguages    bool
	ShareMilitary     bool
	ShareFamily       bool

	ShareProfilePhoto     bool
	ShareDocuments        bool
	ShareCertificateFiles bool

	RealtimeSync bool

	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Default はすべての共有を許可した初期設定を返します。
func Default(contractID string, now time.Time) *Config {
	return &Config{
		ContractID:            contractID,
		ShareBasic:            true,
		ShareContact:          true,
		ShareEducation:        true,
		ShareCareer:           true,
		ShareCertificates:     true,
		ShareLanguages:        true,
		ShareMilitary:         true,
		ShareFamily:           true,
		ShareProfilePhoto:     true,
		ShareDocuments:        true,
		ShareCertificateFiles: true,
		RealtimeSync:          true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// Clone は設定のコピーを返します。
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	if c.UpdatedBy != nil {
		v := *c.UpdatedBy
		cp.UpdatedBy = &v
	}
	return &cp
}

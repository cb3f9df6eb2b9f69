package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ogurasousui/hrlink/internal/core/relation"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

// relationColumns は関連データ 1 種類分のテーブル定義です。
// 人物側と社員側でテーブル名・列名が異なるため、種類ごと・側ごとに定義します。
type relationColumns[T any] struct {
	table  string
	owner  string
	fields []string
	// dest は id, owner, sort_order, fields の順の Scan 先を返します。
	dest func(*T) []any
	// values は sort_order, fields の順の値を返します。
	values func(T) []any
}

// RelationTable は relation.Repository の PostgreSQL 実装です。
type RelationTable[T any] struct {
	pool      pgdb.Queryer
	cols      relationColumns[T]
	selectSQL string
	deleteSQL string
	insertSQL string
}

func newRelationTable[T any](pool pgdb.Queryer, cols relationColumns[T]) *RelationTable[T] {
	selectCols := append([]string{"id", cols.owner, "sort_order"}, cols.fields...)
	insertCols := append([]string{cols.owner, "sort_order"}, cols.fields...)
	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	return &RelationTable[T]{
		pool: pool,
		cols: cols,
		selectSQL: `
        SELECT ` + strings.Join(selectCols, ", ") + `
          FROM ` + cols.table + `
         WHERE ` + cols.owner + ` = $1
         ORDER BY sort_order, id
    `,
		deleteSQL: `DELETE FROM ` + cols.table + ` WHERE ` + cols.owner + ` = $1`,
		insertSQL: `INSERT INTO ` + cols.table + ` (` + strings.Join(insertCols, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`,
	}
}

// List は所有者の行を並び順で返します。
func (r *RelationTable[T]) List(ctx context.Context, ownerID string) ([]T, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, r.selectSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", r.cols.table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := rows.Scan(r.cols.dest(&v)...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", r.cols.table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: list: %w", r.cols.table, err)
	}
	return out, nil
}

// ReplaceAll は所有者の行をすべて削除し、rows を挿入します。挿入件数を返します。
// 呼び出し側のトランザクション内で実行してください。
func (r *RelationTable[T]) ReplaceAll(ctx context.Context, ownerID string, rows []T) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, r.deleteSQL, ownerID); err != nil {
		return 0, fmt.Errorf("%s: delete: %w", r.cols.table, err)
	}

	for _, row := range rows {
		args := append([]any{ownerID}, r.cols.values(row)...)
		if _, err := exec.Exec(ctx, r.insertSQL, args...); err != nil {
			return 0, fmt.Errorf("%s: insert: %w", r.cols.table, err)
		}
	}
	return len(rows), nil
}

// DeleteAll は所有者の行をすべて削除し、削除件数を返します。
func (r *RelationTable[T]) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, r.deleteSQL, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: delete: %w", r.cols.table, err)
	}
	return int(tag.RowsAffected()), nil
}

// NewPersonRelations は人物側の関連データリポジトリ一式を返します。
func NewPersonRelations(pool pgdb.Queryer) relation.Set {
	return relation.Set{
		Education: newRelationTable(pool, relationColumns[relation.Education]{
			table:  "profile_educations",
			owner:  "person_id",
			fields: []string{"school_name", "major", "degree", "status", "start_date", "end_date"},
			dest: func(v *relation.Education) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.SchoolName, &v.Major, &v.Degree, &v.Status, &v.StartDate, &v.EndDate}
			},
			values: func(v relation.Education) []any {
				return []any{v.SortOrder, v.SchoolName, v.Major, v.Degree, v.Status, nullableTime(v.StartDate), nullableTime(v.EndDate)}
			},
		}),
		Career: newRelationTable(pool, relationColumns[relation.Career]{
			table:  "profile_careers",
			owner:  "person_id",
			fields: []string{"company_name", "department", "position", "description", "start_date", "end_date"},
			dest: func(v *relation.Career) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.CompanyName, &v.Department, &v.Position, &v.Description, &v.StartDate, &v.EndDate}
			},
			values: func(v relation.Career) []any {
				return []any{v.SortOrder, v.CompanyName, v.Department, v.Position, v.Description, nullableTime(v.StartDate), nullableTime(v.EndDate)}
			},
		}),
		Certificate: newRelationTable(pool, relationColumns[relation.Certificate]{
			table:  "profile_certificates",
			owner:  "person_id",
			fields: []string{"name", "issuer", "number", "acquired_date"},
			dest: func(v *relation.Certificate) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Name, &v.Issuer, &v.Number, &v.AcquiredDate}
			},
			values: func(v relation.Certificate) []any {
				return []any{v.SortOrder, v.Name, v.Issuer, v.Number, nullableTime(v.AcquiredDate)}
			},
		}),
		Language: newRelationTable(pool, relationColumns[relation.Language]{
			table:  "profile_languages",
			owner:  "person_id",
			fields: []string{"language", "proficiency", "test_name", "score"},
			dest: func(v *relation.Language) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Language, &v.Proficiency, &v.TestName, &v.Score}
			},
			values: func(v relation.Language) []any {
				return []any{v.SortOrder, v.Language, v.Proficiency, v.TestName, v.Score}
			},
		}),
		Family: newRelationTable(pool, relationColumns[relation.FamilyMember]{
			table:  "profile_family_members",
			owner:  "person_id",
			fields: []string{"name", "relationship", "birth_date", "occupation", "cohabiting"},
			dest: func(v *relation.FamilyMember) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Name, &v.Relationship, &v.BirthDate, &v.Occupation, &v.Cohabiting}
			},
			values: func(v relation.FamilyMember) []any {
				return []any{v.SortOrder, v.Name, v.Relationship, nullableTime(v.BirthDate), v.Occupation, v.Cohabiting}
			},
		}),
	}
}

// NewEmployeeRelations は社員側の関連データリポジトリ一式を返します。
func NewEmployeeRelations(pool pgdb.Queryer) relation.Set {
	return relation.Set{
		Education: newRelationTable(pool, relationColumns[relation.Education]{
			table:  "employee_educations",
			owner:  "employee_id",
			fields: []string{"school", "major", "degree", "graduation_status", "entered_on", "graduated_on"},
			dest: func(v *relation.Education) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.SchoolName, &v.Major, &v.Degree, &v.Status, &v.StartDate, &v.EndDate}
			},
			values: func(v relation.Education) []any {
				return []any{v.SortOrder, v.SchoolName, v.Major, v.Degree, v.Status, nullableTime(v.StartDate), nullableTime(v.EndDate)}
			},
		}),
		Career: newRelationTable(pool, relationColumns[relation.Career]{
			table:  "employee_careers",
			owner:  "employee_id",
			fields: []string{"employer", "division", "job_title", "duties", "joined_on", "left_on"},
			dest: func(v *relation.Career) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.CompanyName, &v.Department, &v.Position, &v.Description, &v.StartDate, &v.EndDate}
			},
			values: func(v relation.Career) []any {
				return []any{v.SortOrder, v.CompanyName, v.Department, v.Position, v.Description, nullableTime(v.StartDate), nullableTime(v.EndDate)}
			},
		}),
		Certificate: newRelationTable(pool, relationColumns[relation.Certificate]{
			table:  "employee_certificates",
			owner:  "employee_id",
			fields: []string{"certificate_name", "issuing_body", "certificate_number", "acquired_on"},
			dest: func(v *relation.Certificate) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Name, &v.Issuer, &v.Number, &v.AcquiredDate}
			},
			values: func(v relation.Certificate) []any {
				return []any{v.SortOrder, v.Name, v.Issuer, v.Number, nullableTime(v.AcquiredDate)}
			},
		}),
		Language: newRelationTable(pool, relationColumns[relation.Language]{
			table:  "employee_languages",
			owner:  "employee_id",
			fields: []string{"language", "level", "exam_name", "exam_score"},
			dest: func(v *relation.Language) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Language, &v.Proficiency, &v.TestName, &v.Score}
			},
			values: func(v relation.Language) []any {
				return []any{v.SortOrder, v.Language, v.Proficiency, v.TestName, v.Score}
			},
		}),
		Family: newRelationTable(pool, relationColumns[relation.FamilyMember]{
			table:  "employee_family_members",
			owner:  "employee_id",
			fields: []string{"full_name", "relation", "date_of_birth", "job", "lives_together"},
			dest: func(v *relation.FamilyMember) []any {
				return []any{&v.ID, &v.OwnerID, &v.SortOrder, &v.Name, &v.Relationship, &v.BirthDate, &v.Occupation, &v.Cohabiting}
			},
			values: func(v relation.FamilyMember) []any {
				return []any{v.SortOrder, v.Name, v.Relationship, nullableTime(v.BirthDate), v.Occupation, v.Cohabiting}
			},
		}),
	}
}

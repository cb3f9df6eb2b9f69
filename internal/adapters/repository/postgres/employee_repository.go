package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

const employeeNumberUniqueKey = "employees_company_number_key"

const employeeSelectColumns = `id, company_id, person_id, contract_id, employee_number, status, position, department,
               hired_at, resigned_at, name, name_en, date_of_birth, sex, nationality,
               email, phone_number, mobile, home_address, home_address_detail, zip_code, emergency_phone,
               hobby, specialty, military_service_type, military_branch, military_rank,
               military_service_from, military_service_to, photo_path, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (`+employeeSelectColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
        RETURNING `+employeeSelectColumns,
		e.ID,
		e.CompanyID,
		e.PersonID,
		e.ContractID,
		e.EmployeeNumber,
		string(e.Status),
		e.Position,
		e.Department,
		nullableTime(e.HiredAt),
		nullableTime(e.ResignedAt),
		e.Name,
		e.NameEn,
		nullableTime(e.DateOfBirth),
		e.Sex,
		e.Nationality,
		e.Email,
		e.PhoneNumber,
		e.Mobile,
		e.HomeAddress,
		e.HomeAddressDetail,
		e.ZipCode,
		e.EmergencyPhone,
		e.Hobby,
		e.Specialty,
		e.MilitaryServiceType,
		e.MilitaryBranch,
		e.MilitaryRank,
		nullableTime(e.MilitaryServiceFrom),
		nullableTime(e.MilitaryServiceTo),
		e.PhotoPath,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。会社・人物・社員番号は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET contract_id = $1,
               status = $2,
               position = $3,
               department = $4,
               hired_at = $5,
               resigned_at = $6,
               name = $7,
               name_en = $8,
               date_of_birth = $9,
               sex = $10,
               nationality = $11,
               email = $12,
               phone_number = $13,
               mobile = $14,
               home_address = $15,
               home_address_detail = $16,
               zip_code = $17,
               emergency_phone = $18,
               hobby = $19,
               specialty = $20,
               military_service_type = $21,
               military_branch = $22,
               military_rank = $23,
               military_service_from = $24,
               military_service_to = $25,
               photo_path = $26,
               updated_at = $27
         WHERE id = $28
        RETURNING `+employeeSelectColumns,
		e.ContractID,
		string(e.Status),
		e.Position,
		e.Department,
		nullableTime(e.HiredAt),
		nullableTime(e.ResignedAt),
		e.Name,
		e.NameEn,
		nullableTime(e.DateOfBirth),
		e.Sex,
		e.Nationality,
		e.Email,
		e.PhoneNumber,
		e.Mobile,
		e.HomeAddress,
		e.HomeAddressDetail,
		e.ZipCode,
		e.EmergencyPhone,
		e.Hobby,
		e.Specialty,
		e.MilitaryServiceType,
		e.MilitaryBranch,
		e.MilitaryRank,
		nullableTime(e.MilitaryServiceFrom),
		nullableTime(e.MilitaryServiceTo),
		e.PhotoPath,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeSelectColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// ListByCompanyAndPerson は同じ会社に属する同一人物の社員レコードを新しい順に返します。
func (r *EmployeeRepository) ListByCompanyAndPerson(ctx context.Context, companyID, personID string) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeSelectColumns+`
          FROM employees
         WHERE company_id = $1 AND person_id = $2
         ORDER BY created_at DESC, id DESC
    `, companyID, personID)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e      employee.Employee
		status string
	)

	if err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.PersonID,
		&e.ContractID,
		&e.EmployeeNumber,
		&status,
		&e.Position,
		&e.Department,
		&e.HiredAt,
		&e.ResignedAt,
		&e.Name,
		&e.NameEn,
		&e.DateOfBirth,
		&e.Sex,
		&e.Nationality,
		&e.Email,
		&e.PhoneNumber,
		&e.Mobile,
		&e.HomeAddress,
		&e.HomeAddressDetail,
		&e.ZipCode,
		&e.EmergencyPhone,
		&e.Hobby,
		&e.Specialty,
		&e.MilitaryServiceType,
		&e.MilitaryBranch,
		&e.MilitaryRank,
		&e.MilitaryServiceFrom,
		&e.MilitaryServiceTo,
		&e.PhotoPath,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Status = employee.Status(status)
	e.HiredAt = dateOnly(e.HiredAt)
	e.ResignedAt = dateOnly(e.ResignedAt)
	e.DateOfBirth = dateOnly(e.DateOfBirth)
	e.MilitaryServiceFrom = dateOnly(e.MilitaryServiceFrom)
	e.MilitaryServiceTo = dateOnly(e.MilitaryServiceTo)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == employeeNumberUniqueKey {
				return employee.ErrEmployeeNumberAlreadyExists
			}
		case invalidTextRepresentation:
			return employee.ErrInvalidID
		}
	}

	return err
}

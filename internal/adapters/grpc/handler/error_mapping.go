package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/hrlink/internal/core/company"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, contract.ErrValidation),
		errors.Is(err, profile.ErrInvalidID),
		errors.Is(err, profile.ErrInvalidName),
		errors.Is(err, profile.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrInvalidNumberingPolicy):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, contract.ErrPermissionDenied), errors.Is(err, profile.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, contract.ErrDuplicateActiveContract),
		errors.Is(err, contract.ErrPendingRequestExists),
		errors.Is(err, sharing.ErrConfigAlreadyExists),
		errors.Is(err, employee.ErrEmployeeNumberAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, contract.ErrInvalidTransition), errors.Is(err, contract.ErrContractNotActive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, contract.ErrContractNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, sharing.ErrConfigNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

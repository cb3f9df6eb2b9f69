package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/hrlink/internal/adapters/grpc/interceptor"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/syncer"
)

// ContractUseCase は契約の状態遷移を扱うユースケースです。
type ContractUseCase interface {
	RequestContract(ctx context.Context, actor contract.Actor, in contract.RequestContractInput) (*contract.Contract, error)
	Approve(ctx context.Context, actor contract.Actor, contractID string) (*contract.Contract, error)
	Reject(ctx context.Context, actor contract.Actor, contractID, reason string) (*contract.Contract, error)
	Cancel(ctx context.Context, actor contract.Actor, contractID, reason string) (*contract.Contract, error)
	RequestTermination(ctx context.Context, actor contract.Actor, contractID, reason string) (*contract.Contract, error)
	ApproveTermination(ctx context.Context, actor contract.Actor, contractID string) (*contract.Contract, error)
	RejectTermination(ctx context.Context, actor contract.Actor, contractID, reason string) (*contract.Contract, error)
	Terminate(ctx context.Context, actor contract.Actor, contractID, reason string) (*contract.Contract, error)
	GetContract(ctx context.Context, actor contract.Actor, contractID string) (*contract.Contract, error)
}

// SyncUseCase は手動同期のユースケースです。
type SyncUseCase interface {
	SyncPersonToCompany(ctx context.Context, actor contract.Actor, contractID string, names []string) (*syncer.Result, error)
	SyncCompanyToPerson(ctx context.Context, actor contract.Actor, contractID string, names []string) (*syncer.Result, error)
}

// SharingUseCase は共有設定のユースケースです。
type SharingUseCase interface {
	GetSettings(ctx context.Context, actor contract.Actor, contractID string) (*sharing.Config, error)
	UpdateSettings(ctx context.Context, actor contract.Actor, in sharing.UpdateSettingsInput) (*sharing.Config, error)
}

// ProfileUseCase は本人によるプロフィール操作のユースケースです。
type ProfileUseCase interface {
	GetProfile(ctx context.Context, personID string) (*profile.Profile, error)
	UpdateProfile(ctx context.Context, actorUserID string, in profile.UpdateProfileInput) (*profile.Profile, error)
}

// ContractGrpcHandler は ContractService の gRPC 実装です。
type ContractGrpcHandler struct {
	contracts ContractUseCase
	sync      SyncUseCase
	sharing   SharingUseCase
	profiles  ProfileUseCase
}

var _ ContractServiceServer = (*ContractGrpcHandler)(nil)

// NewContractGrpcHandler は ContractGrpcHandler を生成します。
func NewContractGrpcHandler(contracts ContractUseCase, sync SyncUseCase, sharingSvc SharingUseCase, profiles ProfileUseCase) *ContractGrpcHandler {
	return &ContractGrpcHandler{contracts: contracts, sync: sync, sharing: sharingSvc, profiles: profiles}
}

func actorFrom(ctx context.Context) (contract.Actor, error) {
	actor, ok := interceptor.ActorFromContext(ctx)
	if !ok {
		return contract.Actor{}, status.Error(codes.Unauthenticated, "actor is required")
	}
	return actor, nil
}

// contractRequest はリクエストから actor と contract_id を取り出します。
func contractRequest(ctx context.Context, req *structpb.Struct) (contract.Actor, string, error) {
	if req == nil {
		return contract.Actor{}, "", status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return contract.Actor{}, "", err
	}
	id, err := requiredString(req, "contract_id")
	if err != nil {
		return contract.Actor{}, "", err
	}
	return actor, id, nil
}

func contractResponse(c *contract.Contract, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"contract": contractMap(c)})
}

// RequestContract は契約を申請します。
func (h *ContractGrpcHandler) RequestContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	var in contract.RequestContractInput
	for key, dst := range map[string]*string{
		"person_id":     &in.PersonID,
		"company_id":    &in.CompanyID,
		"contract_type": &in.ContractType,
		"position":      &in.Position,
		"department":    &in.Department,
		"message":       &in.Message,
	} {
		if *dst, err = stringField(req, key); err != nil {
			return nil, err
		}
	}

	return contractResponse(h.contracts.RequestContract(ctx, actor, in))
}

// ApproveContract は申請を承認します。
func (h *ContractGrpcHandler) ApproveContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return contractResponse(h.contracts.Approve(ctx, actor, id))
}

// RejectContract は申請を却下します。
func (h *ContractGrpcHandler) RejectContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.withReason(ctx, req, h.contracts.Reject)
}

// CancelContract は申請者が申請を取り下げます。
func (h *ContractGrpcHandler) CancelContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.withReason(ctx, req, h.contracts.Cancel)
}

// RequestTermination は退職を申請します。
func (h *ContractGrpcHandler) RequestTermination(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.withReason(ctx, req, h.contracts.RequestTermination)
}

// ApproveTermination は退職申請を承認します。
func (h *ContractGrpcHandler) ApproveTermination(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return contractResponse(h.contracts.ApproveTermination(ctx, actor, id))
}

// RejectTermination は退職申請を差し戻します。
func (h *ContractGrpcHandler) RejectTermination(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.withReason(ctx, req, h.contracts.RejectTermination)
}

// TerminateContract は会社側が契約を即時終了します。
func (h *ContractGrpcHandler) TerminateContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.withReason(ctx, req, h.contracts.Terminate)
}

// GetContract は契約を取得します。
func (h *ContractGrpcHandler) GetContract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return contractResponse(h.contracts.GetContract(ctx, actor, id))
}

func (h *ContractGrpcHandler) withReason(ctx context.Context, req *structpb.Struct, call func(context.Context, contract.Actor, string, string) (*contract.Contract, error)) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	reason, err := stringField(req, "reason")
	if err != nil {
		return nil, err
	}
	return contractResponse(call(ctx, actor, id, reason))
}

// SyncPersonToCompany は個人から会社への手動同期を実行します。fields が空なら許可された全対象です。
func (h *ContractGrpcHandler) SyncPersonToCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.runSync(ctx, req, h.sync.SyncPersonToCompany)
}

// SyncCompanyToPerson は会社から個人への手動同期を実行します。
func (h *ContractGrpcHandler) SyncCompanyToPerson(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.runSync(ctx, req, h.sync.SyncCompanyToPerson)
}

func (h *ContractGrpcHandler) runSync(ctx context.Context, req *structpb.Struct, call func(context.Context, contract.Actor, string, []string) (*syncer.Result, error)) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	names, err := stringList(req, "fields")
	if err != nil {
		return nil, err
	}

	result, err := call(ctx, actor, id, names)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"result": syncResultMap(result)})
}

// GetSharingSettings は共有設定を取得します。
func (h *ContractGrpcHandler) GetSharingSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	cfg, err := h.sharing.GetSettings(ctx, actor, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"settings": settingsMap(cfg)})
}

// UpdateSharingSettings は共有設定を部分更新します。指定されなかった項目は変更しません。
func (h *ContractGrpcHandler) UpdateSharingSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, id, err := contractRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	in := sharing.UpdateSettingsInput{ContractID: id}
	for key, dst := range map[string]**bool{
		"share_basic":             &in.ShareBasic,
		"share_contact":           &in.ShareContact,
		"share_education":         &in.ShareEducation,
		"share_career":            &in.ShareCareer,
		"share_certificates":      &in.ShareCertificates,
		"share_languages":         &in.ShareLanguages,
		"share_military":          &in.ShareMilitary,
		"share_family":            &in.ShareFamily,
		"share_profile_photo":     &in.ShareProfilePhoto,
		"share_documents":         &in.ShareDocuments,
		"share_certificate_files": &in.ShareCertificateFiles,
		"realtime_sync":           &in.RealtimeSync,
	} {
		if *dst, err = optionalBool(req, key); err != nil {
			return nil, err
		}
	}

	cfg, err := h.sharing.UpdateSettings(ctx, actor, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"settings": settingsMap(cfg)})
}

// GetProfile は本人のプロフィールを取得します。
func (h *ContractGrpcHandler) GetProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if actor.AccountType != contract.AccountTypePersonal {
		return nil, status.Error(codes.PermissionDenied, "personal account is required")
	}

	p, err := h.profiles.GetProfile(ctx, actor.UserID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"profile": profileMap(p)})
}

// UpdateProfile は本人のプロフィールを部分更新します。リアルタイム同期が有効な契約へはコミット後に反映されます。
func (h *ContractGrpcHandler) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if actor.AccountType != contract.AccountTypePersonal {
		return nil, status.Error(codes.PermissionDenied, "personal account is required")
	}

	in := profile.UpdateProfileInput{PersonID: actor.UserID}
	for key, dst := range map[string]**string{
		"name":              &in.Name,
		"english_name":      &in.EnglishName,
		"gender":            &in.Gender,
		"nationality":       &in.Nationality,
		"email":             &in.Email,
		"phone":             &in.Phone,
		"mobile_phone":      &in.MobilePhone,
		"address":           &in.Address,
		"address_detail":    &in.AddressDetail,
		"postal_code":       &in.PostalCode,
		"emergency_contact": &in.EmergencyContact,
		"hobby":             &in.Hobby,
		"specialty":         &in.Specialty,
	} {
		if *dst, err = optionalString(req, key); err != nil {
			return nil, err
		}
	}
	if in.BirthDate, err = optionalDate(req, "birth_date"); err != nil {
		return nil, err
	}

	p, err := h.profiles.UpdateProfile(ctx, actor.UserID, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]interface{}{"profile": profileMap(p)})
}

package handler

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/syncer"
)

const dateLayout = "2006-01-02"

func invalidArgument(format string, args ...interface{}) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf(format, args...))
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", invalidArgument("%s must be a string", key)
	}
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	v, err := stringField(req, key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", invalidArgument("%s is required", key)
	}
	return v, nil
}

// optionalString はキーが存在する場合のみ値を返します。
func optionalString(req *structpb.Struct, key string) (*string, error) {
	if _, ok := req.GetFields()[key]; !ok {
		return nil, nil
	}
	v, err := stringField(req, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalBool(req *structpb.Struct, key string) (*bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return nil, invalidArgument("%s must be a boolean", key)
	}
	value := b.BoolValue
	return &value, nil
}

func optionalDate(req *structpb.Struct, key string) (*time.Time, error) {
	raw, err := optionalString(req, key)
	if err != nil || raw == nil || *raw == "" {
		return nil, err
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, invalidArgument("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

func stringList(req *structpb.Struct, key string) ([]string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list, isList := v.GetKind().(*structpb.Value_ListValue)
	if !isList {
		return nil, invalidArgument("%s must be a list of strings", key)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, isString := item.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return nil, invalidArgument("%s must be a list of strings", key)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

func optString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.UTC().Format(time.RFC3339Nano)
}

func optDate(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.Format(dateLayout)
}

func contractMap(c *contract.Contract) map[string]interface{} {
	return map[string]interface{}{
		"id":                           c.ID,
		"person_id":                    c.PersonID,
		"company_id":                   c.CompanyID,
		"employee_id":                  optString(c.EmployeeID),
		"status":                       string(c.Status),
		"contract_type":                c.ContractType,
		"position":                     c.Position,
		"department":                   c.Department,
		"employee_number":              optString(c.EmployeeNumber),
		"message":                      optString(c.Message),
		"requested_by":                 c.RequestedBy,
		"requested_at":                 optTime(&c.RequestedAt),
		"approved_by":                  optString(c.ApprovedBy),
		"approved_at":                  optTime(c.ApprovedAt),
		"rejected_by":                  optString(c.RejectedBy),
		"rejected_at":                  optTime(c.RejectedAt),
		"rejection_reason":             optString(c.RejectionReason),
		"cancelled_by":                 optString(c.CancelledBy),
		"cancelled_at":                 optTime(c.CancelledAt),
		"cancellation_reason":          optString(c.CancellationReason),
		"termination_requested_by":     optString(c.TerminationRequestedBy),
		"termination_requested_at":     optTime(c.TerminationRequestedAt),
		"termination_reason":           optString(c.TerminationReason),
		"termination_rejected_by":      optString(c.TerminationRejectedBy),
		"termination_rejected_at":      optTime(c.TerminationRejectedAt),
		"termination_rejection_reason": optString(c.TerminationRejectionReason),
		"terminated_by":                optString(c.TerminatedBy),
		"terminated_at":                optTime(c.TerminatedAt),
		"retention_until":              optTime(c.RetentionUntil),
		"created_at":                   optTime(&c.CreatedAt),
		"updated_at":                   optTime(&c.UpdatedAt),
	}
}

func settingsMap(cfg *sharing.Config) map[string]interface{} {
	return map[string]interface{}{
		"contract_id":             cfg.ContractID,
		"share_basic":             cfg.ShareBasic,
		"share_contact":           cfg.ShareContact,
		"share_education":         cfg.ShareEducation,
		"share_career":            cfg.ShareCareer,
		"share_certificates":      cfg.ShareCertificates,
		"share_languages":         cfg.ShareLanguages,
		"share_military":          cfg.ShareMilitary,
		"share_family":            cfg.ShareFamily,
		"share_profile_photo":     cfg.ShareProfilePhoto,
		"share_documents":         cfg.ShareDocuments,
		"share_certificate_files": cfg.ShareCertificateFiles,
		"realtime_sync":           cfg.RealtimeSync,
		"updated_by":              optString(cfg.UpdatedBy),
		"updated_at":              optTime(&cfg.UpdatedAt),
	}
}

func syncResultMap(r *syncer.Result) map[string]interface{} {
	fields := make([]interface{}, 0, len(r.SyncedFields))
	for _, f := range r.SyncedFields {
		fields = append(fields, f)
	}

	changes := make(map[string]interface{}, len(r.Changes))
	for name, c := range r.Changes {
		changes[name] = map[string]interface{}{"old": c.Old, "new": c.New}
	}

	relations := make(map[string]interface{}, len(r.Relations))
	for kind, n := range r.Relations {
		relations[string(kind)] = n
	}

	skipped := make([]interface{}, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		entry := map[string]interface{}{
			"attachment_id": s.AttachmentID,
			"file_name":     s.FileName,
			"category":      string(s.Category),
		}
		if s.Err != nil {
			entry["error"] = s.Err.Error()
		}
		skipped = append(skipped, entry)
	}

	logIDs := make([]interface{}, 0, len(r.LogIDs))
	for _, id := range r.LogIDs {
		logIDs = append(logIDs, id)
	}

	return map[string]interface{}{
		"success":            r.Success,
		"synced_fields":      fields,
		"changes":            changes,
		"relations":          relations,
		"copied_attachments": r.CopiedAttachments,
		"skipped":            skipped,
		"log_ids":            logIDs,
	}
}

func profileMap(p *profile.Profile) map[string]interface{} {
	return map[string]interface{}{
		"person_id":         p.PersonID,
		"account_type":      string(p.AccountType),
		"name":              p.Name,
		"english_name":      p.EnglishName,
		"birth_date":        optDate(p.BirthDate),
		"gender":            p.Gender,
		"nationality":       p.Nationality,
		"email":             p.Email,
		"phone":             p.Phone,
		"mobile_phone":      p.MobilePhone,
		"address":           p.Address,
		"address_detail":    p.AddressDetail,
		"postal_code":       p.PostalCode,
		"emergency_contact": p.EmergencyContact,
		"hobby":             p.Hobby,
		"specialty":         p.Specialty,
		"updated_at":        optTime(&p.UpdatedAt),
	}
}

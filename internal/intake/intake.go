// Package intake runs the public submission pipeline: challenge check,
// field validation, consent completeness, receipt persistence and the
// final atomic write. Checks run in a fixed order and the first failure
// stops the attempt before anything durable happens; only a receipt file
// already written when the database write fails is left behind.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"facilitypay/internal/captcha"
	"facilitypay/internal/consent"
	"facilitypay/internal/storage"
	"facilitypay/internal/utils"
	"facilitypay/pkg/types"
)

// Fixed multipart keys of the public form. Anything else submitted is a
// dynamic field value.
var fixedKeys = map[string]bool{
	"tcNo":          true,
	"fullName":      true,
	"email":         true,
	"address":       true,
	"studentNo":     true,
	"facilityId":    true,
	"receipt":       true,
	"consents":      true,
	"captchaToken":  true,
	"captchaAnswer": true,
	"userType":      true,
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ErrorKind string

const (
	ErrChallengeMissing   ErrorKind = "challenge_missing"
	ErrChallengeMalformed ErrorKind = "challenge_malformed"
	ErrChallengeExpired   ErrorKind = "challenge_expired"
	ErrChallengeWrong     ErrorKind = "challenge_wrong"
	ErrMissingField       ErrorKind = "missing_required_field"
	ErrInvalidIdentityNo  ErrorKind = "invalid_identity_number"
	ErrInvalidEmail       ErrorKind = "invalid_email"
	ErrConsentMalformed   ErrorKind = "consent_malformed"
	ErrIncompleteConsent  ErrorKind = "incomplete_consent"
	ErrStorageWrite       ErrorKind = "storage_write_failed"
	ErrPersistence        ErrorKind = "persistence_failed"
)

// Error is a tagged pipeline failure with a message safe to show the
// submitter.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func failed(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Verifier checks a challenge token/answer pair.
type Verifier interface {
	Verify(token, answer string) error
}

// DocumentCounter reports how many consent documents are currently
// active.
type DocumentCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// FieldLister returns the configured form fields.
type FieldLister interface {
	FormFields(ctx context.Context, onlyActive bool) ([]*types.FormField, error)
}

// SubmissionWriter persists a submission with its consent trail
// atomically.
type SubmissionWriter interface {
	CreateSubmission(ctx context.Context, submission *types.Submission, consents []*types.ConsentRecord) error
}

type Service struct {
	verifier    Verifier
	documents   DocumentCounter
	fields      FieldLister
	submissions SubmissionWriter
	files       storage.Store
}

func NewService(verifier Verifier, documents DocumentCounter, fields FieldLister, submissions SubmissionWriter, files storage.Store) *Service {
	return &Service{
		verifier:    verifier,
		documents:   documents,
		fields:      fields,
		submissions: submissions,
		files:       files,
	}
}

// Request is one raw submission attempt as read off the wire.
type Request struct {
	// Values holds the first value of every non-file form key.
	Values map[string]string

	ReceiptFilename string
	Receipt         io.Reader
}

// Submit runs the pipeline and returns the stored submission, or a
// tagged *Error describing which check failed.
func (s *Service) Submit(ctx context.Context, req *Request) (*types.Submission, error) {

	token := req.Values["captchaToken"]
	answer := req.Values["captchaAnswer"]

	if token == "" || answer == "" {
		return nil, failed(ErrChallengeMissing, "Security check is missing.")
	}
	if err := s.verifier.Verify(token, answer); err != nil {
		switch {
		case errors.Is(err, captcha.ErrExpired):
			return nil, failed(ErrChallengeExpired, "The security question has expired. Please refresh the page.")
		case errors.Is(err, captcha.ErrWrongAnswer):
			return nil, failed(ErrChallengeWrong, "Security check failed. Please solve the math question again.")
		default:
			return nil, failed(ErrChallengeMalformed, "Security check is invalid.")
		}
	}

	identityNo := strings.TrimSpace(req.Values["tcNo"])
	fullName := strings.TrimSpace(req.Values["fullName"])
	studentNo := strings.TrimSpace(req.Values["studentNo"])
	facilityID := strings.TrimSpace(req.Values["facilityId"])
	email := strings.TrimSpace(req.Values["email"])
	address := strings.TrimSpace(req.Values["address"])

	for _, required := range []struct {
		name  string
		value string
	}{
		{"tcNo", identityNo},
		{"fullName", fullName},
		{"studentNo", studentNo},
		{"facilityId", facilityID},
	} {
		if required.value == "" {
			return nil, &Error{
				Kind:    ErrMissingField,
				Field:   required.name,
				Message: "Please fill in all required fields.",
			}
		}
	}
	if req.Receipt == nil {
		return nil, &Error{
			Kind:    ErrMissingField,
			Field:   "receipt",
			Message: "Please upload your payment receipt.",
		}
	}

	if len(identityNo) != 11 {
		return nil, failed(ErrInvalidIdentityNo, "Invalid identity number.")
	}

	if email != "" && !emailShape.MatchString(email) {
		return nil, failed(ErrInvalidEmail, "Please enter a valid email address.")
	}

	var consents []consent.Record
	if raw := req.Values["consents"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &consents); err != nil {
			return nil, failed(ErrConsentMalformed, "Consent data is invalid.")
		}
	}

	activeDocs, err := s.documents.CountActive(ctx)
	if err != nil {
		return nil, &Error{Kind: ErrPersistence, Message: "Your application could not be saved. Please try again.", cause: err}
	}
	if !consent.Complete(activeDocs, consents) {
		return nil, failed(ErrIncompleteConsent, "Please acknowledge every document.")
	}

	storedName := storage.ReceiptName(req.ReceiptFilename)
	receiptKey := "uploads/" + storedName
	contentType := storage.ContentTypeByExt(storedName)
	if err := s.files.Save(ctx, receiptKey, req.Receipt, contentType); err != nil {
		return nil, &Error{Kind: ErrStorageWrite, Message: "There was a problem uploading the file.", cause: err}
	}

	extraData, err := s.snapshotDynamicFields(ctx, req.Values)
	if err != nil {
		return nil, &Error{Kind: ErrPersistence, Message: "Your application could not be saved. Please try again.", cause: err}
	}

	userType := types.UserCategory(req.Values["userType"])
	if userType == "" {
		userType = types.UserCategoryInternalStudent
	}

	submission := &types.Submission{
		IdentityNo:  identityNo,
		FullName:    fullName,
		Email:       utils.NullableString(email),
		Address:     utils.NullableString(address),
		StudentNo:   studentNo,
		UserType:    userType,
		FacilityID:  facilityID,
		ReceiptPath: "/api/uploads/" + storedName,
		ExtraData:   extraData,
	}

	records := make([]*types.ConsentRecord, 0, len(consents))
	for _, c := range consents {
		records = append(records, &types.ConsentRecord{
			DocumentName: c.DocumentName,
			IPAddress:    c.IPAddress,
			UserAgent:    utils.NullableString(c.UserAgent),
			ConsentAt:    c.ConsentAt,
		})
	}

	if err := s.submissions.CreateSubmission(ctx, submission, records); err != nil {
		// The receipt file is already durable at this point; an orphaned
		// file is accepted collateral rather than a cleanup obligation.
		return nil, &Error{Kind: ErrPersistence, Message: "Your application could not be saved. Please try again.", cause: err}
	}

	return submission, nil
}

// snapshotDynamicFields captures values for keys outside the fixed
// schema, keeping only keys that match a currently active form field and
// serializing them in the fields' configured order.
func (s *Service) snapshotDynamicFields(ctx context.Context, values map[string]string) (*string, error) {

	activeFields, err := s.fields.FormFields(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load active form fields: %w", err)
	}

	var buf strings.Builder
	buf.WriteByte('{')
	wrote := false
	for _, field := range activeFields {
		if fixedKeys[field.Name] {
			continue
		}
		value, ok := values[field.Name]
		if !ok {
			continue
		}

		if wrote {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(field.Name)
		val, _ := json.Marshal(value)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		wrote = true
	}
	buf.WriteByte('}')

	out := buf.String()
	return &out, nil
}

package intake

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"facilitypay/internal/captcha"
	"facilitypay/pkg/types"
)

type fakeVerifier struct{ err error }

func (f fakeVerifier) Verify(token, answer string) error { return f.err }

type fakeDocs struct {
	count int
	err   error
}

func (f fakeDocs) CountActive(ctx context.Context) (int, error) { return f.count, f.err }

type fakeFields struct{ fields []*types.FormField }

func (f fakeFields) FormFields(ctx context.Context, onlyActive bool) ([]*types.FormField, error) {
	return f.fields, nil
}

type fakeWriter struct {
	err      error
	got      *types.Submission
	consents []*types.ConsentRecord
}

func (f *fakeWriter) CreateSubmission(ctx context.Context, s *types.Submission, c []*types.ConsentRecord) error {
	if f.err != nil {
		return f.err
	}
	f.got = s
	f.consents = c
	return nil
}

type fakeStore struct {
	err   error
	saved map[string]string
}

func (f *fakeStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	data, _ := io.ReadAll(r)
	f.saved[key] = string(data)
	return nil
}

func (f *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Delete(ctx context.Context, key string) error { return nil }

func validRequest() *Request {
	return &Request{
		Values: map[string]string{
			"tcNo":          "12345678901",
			"fullName":      "Jane Doe",
			"email":         "jane@example.edu",
			"address":       "Campus Dorm 4",
			"studentNo":     "20231234",
			"userType":      "external_student",
			"facilityId":    "fac1",
			"captchaToken":  "token",
			"captchaAnswer": "12",
			"consents": `[{"documentName":"kvkk","ipAddress":"203.0.113.7",` +
				`"userAgent":"test-agent","consentAt":"2025-03-01T12:00:00Z"}]`,
			"emergency_contact": "555-0100",
			"unconfigured_key":  "ignored",
		},
		ReceiptFilename: "Receipt.PDF",
		Receipt:         strings.NewReader("receipt-bytes"),
	}
}

func newService(verifier Verifier, docs DocumentCounter, writer *fakeWriter, files *fakeStore) *Service {
	fields := fakeFields{fields: []*types.FormField{
		{Name: "emergency_contact", Label: "Emergency Contact", Type: "text", SortOrder: 1, IsActive: true},
	}}
	return NewService(verifier, docs, fields, writer, files)
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var ie *Error
	if !errors.As(err, &ie) {
		t.Fatalf("error %v is not an intake.Error", err)
	}
	return ie.Kind
}

func TestSubmitHappyPath(t *testing.T) {
	writer := &fakeWriter{}
	files := &fakeStore{}
	svc := newService(fakeVerifier{}, fakeDocs{count: 1}, writer, files)

	sub, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if sub.IdentityNo != "12345678901" || sub.FullName != "Jane Doe" {
		t.Errorf("submission fields not carried: %+v", sub)
	}
	if sub.UserType != types.UserCategoryExternalStudent {
		t.Errorf("UserType = %q, want external_student", sub.UserType)
	}
	if !strings.HasPrefix(sub.ReceiptPath, "/api/uploads/") {
		t.Errorf("ReceiptPath = %q, want /api/uploads/ prefix", sub.ReceiptPath)
	}
	if !strings.HasSuffix(sub.ReceiptPath, "receipt.pdf") {
		t.Errorf("ReceiptPath = %q, want sanitized original name suffix", sub.ReceiptPath)
	}

	if len(files.saved) != 1 {
		t.Fatalf("saved %d files, want 1", len(files.saved))
	}
	for key, body := range files.saved {
		if !strings.HasPrefix(key, "uploads/") {
			t.Errorf("storage key = %q, want uploads/ prefix", key)
		}
		if body != "receipt-bytes" {
			t.Errorf("stored body = %q", body)
		}
	}

	if len(writer.consents) != 1 {
		t.Fatalf("persisted %d consent records, want 1", len(writer.consents))
	}
	record := writer.consents[0]
	if record.DocumentName != "kvkk" || record.IPAddress != "203.0.113.7" {
		t.Errorf("consent record = %+v", record)
	}
	if record.UserAgent == nil || *record.UserAgent != "test-agent" {
		t.Errorf("consent user agent = %v, want test-agent", record.UserAgent)
	}
	if !record.ConsentAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("consent at = %v", record.ConsentAt)
	}

	// Dynamic snapshot keeps configured keys in field order, drops the rest.
	if sub.ExtraData == nil {
		t.Fatal("ExtraData is nil")
	}
	if *sub.ExtraData != `{"emergency_contact":"555-0100"}` {
		t.Errorf("ExtraData = %s", *sub.ExtraData)
	}
}

func TestSubmitChallengeFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Request)
		verifyErr error
		want      ErrorKind
	}{
		{"missing token", func(r *Request) { r.Values["captchaToken"] = "" }, nil, ErrChallengeMissing},
		{"missing answer", func(r *Request) { r.Values["captchaAnswer"] = "" }, nil, ErrChallengeMissing},
		{"malformed", nil, captcha.ErrMalformedToken, ErrChallengeMalformed},
		{"expired", nil, captcha.ErrExpired, ErrChallengeExpired},
		{"wrong", nil, captcha.ErrWrongAnswer, ErrChallengeWrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}
			svc := newService(fakeVerifier{err: tt.verifyErr}, fakeDocs{count: 1}, &fakeWriter{}, &fakeStore{})

			_, err := svc.Submit(context.Background(), req)
			if got := kindOf(t, err); got != tt.want {
				t.Errorf("kind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmitRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"identity number", func(r *Request) { r.Values["tcNo"] = "" }, "tcNo"},
		{"full name", func(r *Request) { r.Values["fullName"] = "  " }, "fullName"},
		{"student number", func(r *Request) { r.Values["studentNo"] = "" }, "studentNo"},
		{"facility", func(r *Request) { r.Values["facilityId"] = "" }, "facilityId"},
		{"receipt", func(r *Request) { r.Receipt = nil }, "receipt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			svc := newService(fakeVerifier{}, fakeDocs{count: 1}, &fakeWriter{}, &fakeStore{})

			_, err := svc.Submit(context.Background(), req)
			var ie *Error
			if !errors.As(err, &ie) {
				t.Fatalf("error %v is not an intake.Error", err)
			}
			if ie.Kind != ErrMissingField || ie.Field != tt.field {
				t.Errorf("got (%q, %q), want (%q, %q)", ie.Kind, ie.Field, ErrMissingField, tt.field)
			}
		})
	}
}

func TestSubmitIdentityNumberLength(t *testing.T) {
	tests := []struct {
		identityNo string
		wantErr    bool
	}{
		{"1234567890", true},   // 10 digits
		{"123456789012", true}, // 12 digits
		{"12345678901", false}, // exactly 11
	}

	for _, tt := range tests {
		t.Run(tt.identityNo, func(t *testing.T) {
			req := validRequest()
			req.Values["tcNo"] = tt.identityNo
			req.Receipt = strings.NewReader("r")
			svc := newService(fakeVerifier{}, fakeDocs{count: 1}, &fakeWriter{}, &fakeStore{})

			_, err := svc.Submit(context.Background(), req)
			if tt.wantErr {
				if got := kindOf(t, err); got != ErrInvalidIdentityNo {
					t.Errorf("kind = %q, want %q", got, ErrInvalidIdentityNo)
				}
			} else if err != nil {
				t.Errorf("Submit() error = %v, want nil", err)
			}
		})
	}
}

func TestSubmitEmail(t *testing.T) {
	t.Run("bad shape rejected", func(t *testing.T) {
		req := validRequest()
		req.Values["email"] = "not-an-email"
		svc := newService(fakeVerifier{}, fakeDocs{count: 1}, &fakeWriter{}, &fakeStore{})

		_, err := svc.Submit(context.Background(), req)
		if got := kindOf(t, err); got != ErrInvalidEmail {
			t.Errorf("kind = %q, want %q", got, ErrInvalidEmail)
		}
	})

	t.Run("absent email allowed", func(t *testing.T) {
		req := validRequest()
		req.Values["email"] = ""
		writer := &fakeWriter{}
		svc := newService(fakeVerifier{}, fakeDocs{count: 1}, writer, &fakeStore{})

		sub, err := svc.Submit(context.Background(), req)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if sub.Email != nil {
			t.Errorf("Email = %v, want nil", *sub.Email)
		}
	})
}

func TestSubmitConsentThreshold(t *testing.T) {
	twoConsents := `[
		{"documentName":"kvkk","ipAddress":"1.2.3.4","consentAt":"2025-03-01T12:00:00Z"},
		{"documentName":"kvkk","ipAddress":"1.2.3.4","consentAt":"2025-03-01T12:00:01Z"}]`

	tests := []struct {
		name      string
		activeDoc int
		consents  string
		want      ErrorKind // "" means success
	}{
		{"fewer than active", 2, `[{"documentName":"kvkk","ipAddress":"1.2.3.4","consentAt":"2025-03-01T12:00:00Z"}]`, ErrIncompleteConsent},
		{"empty consent list", 1, "", ErrIncompleteConsent},
		{"count satisfied by duplicates", 2, twoConsents, ""},
		{"no active documents", 0, "", ""},
		{"malformed json", 1, "{broken", ErrConsentMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Values["consents"] = tt.consents
			svc := newService(fakeVerifier{}, fakeDocs{count: tt.activeDoc}, &fakeWriter{}, &fakeStore{})

			_, err := svc.Submit(context.Background(), req)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Submit() error = %v, want nil", err)
				}
				return
			}
			if got := kindOf(t, err); got != tt.want {
				t.Errorf("kind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmitStorageFailureStopsPersistence(t *testing.T) {
	writer := &fakeWriter{}
	files := &fakeStore{err: errors.New("disk full")}
	svc := newService(fakeVerifier{}, fakeDocs{count: 1}, writer, files)

	_, err := svc.Submit(context.Background(), validRequest())
	if got := kindOf(t, err); got != ErrStorageWrite {
		t.Fatalf("kind = %q, want %q", got, ErrStorageWrite)
	}
	if writer.got != nil {
		t.Error("CreateSubmission was called after a storage failure")
	}
}

func TestSubmitPersistenceFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("db down")}
	svc := newService(fakeVerifier{}, fakeDocs{count: 1}, writer, &fakeStore{})

	_, err := svc.Submit(context.Background(), validRequest())
	if got := kindOf(t, err); got != ErrPersistence {
		t.Errorf("kind = %q, want %q", got, ErrPersistence)
	}
}

func TestSubmitDefaultsUserType(t *testing.T) {
	req := validRequest()
	delete(req.Values, "userType")
	writer := &fakeWriter{}
	svc := newService(fakeVerifier{}, fakeDocs{count: 1}, writer, &fakeStore{})

	sub, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sub.UserType != types.UserCategoryInternalStudent {
		t.Errorf("UserType = %q, want internal_student default", sub.UserType)
	}
}

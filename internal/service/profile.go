package service

import (
	"context"
	"io"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/storage"
	"github.com/jobhive/jobhive/internal/validation/validator"
)

// SeekerProfileInput carries the mutable job seeker profile fields.
type SeekerProfileInput struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Location string `json:"location"`
}

// EmployerProfileInput carries the mutable employer profile fields.
type EmployerProfileInput struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Description string `json:"description"`
	CompanySize string `json:"company_size"`
	Industry    string `json:"industry"`
}

// ProfileService manages seeker and employer profiles, including the CV
// document behind the application preconditions.
type ProfileService struct {
	accounts repository.AccountRepository
	cvs      *storage.CVStore
	logger   *logger.Logger
}

// NewProfileService creates a new profile service instance.
func NewProfileService(accounts repository.AccountRepository, cvs *storage.CVStore, log *logger.Logger) *ProfileService {
	return &ProfileService{accounts: accounts, cvs: cvs, logger: log}
}

// GetSeekerProfile returns the caller's seeker profile. A missing profile
// is reported as incomplete rather than not found, matching the application
// precondition it feeds.
func (s *ProfileService) GetSeekerProfile(ctx context.Context, caller domain.Caller) (*domain.SeekerProfile, error) {
	if !caller.IsJobSeeker() {
		return nil, ecode.Authorization("only job seekers have a seeker profile")
	}
	p, err := s.accounts.GetSeekerProfile(ctx, caller.AccountID)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, ecode.IncompleteProfile("no seeker profile yet")
		}
		return nil, ecode.Internal(err, "failed to load seeker profile")
	}
	return p, nil
}

// UpdateSeekerProfile upserts the caller's seeker profile fields. The CV
// reference is managed separately through UploadCV.
func (s *ProfileService) UpdateSeekerProfile(ctx context.Context, caller domain.Caller, in *SeekerProfileInput) (*domain.SeekerProfile, error) {
	if !caller.IsJobSeeker() {
		return nil, ecode.Authorization("only job seekers have a seeker profile")
	}

	p, err := s.accounts.GetSeekerProfile(ctx, caller.AccountID)
	if err != nil {
		if !data.IsNotFound(err) {
			return nil, ecode.Internal(err, "failed to load seeker profile")
		}
		p = &domain.SeekerProfile{AccountID: caller.AccountID}
	}
	p.Headline = in.Headline
	p.Summary = in.Summary
	p.Location = in.Location

	if err := s.accounts.UpsertSeekerProfile(ctx, p); err != nil {
		return nil, ecode.Internal(err, "failed to save seeker profile")
	}
	return p, nil
}

// UploadCV stores the CV document and records its reference on the seeker
// profile, replacing any previous document.
func (s *ProfileService) UploadCV(ctx context.Context, caller domain.Caller, filename string, r io.Reader) (*domain.SeekerProfile, error) {
	if !caller.IsJobSeeker() {
		return nil, ecode.Authorization("only job seekers can upload a CV")
	}
	if !validator.IsDocument(filename) {
		return nil, ecode.Validation("CV must be a document file (pdf, doc, docx, odt, rtf, txt)")
	}

	p, err := s.accounts.GetSeekerProfile(ctx, caller.AccountID)
	if err != nil {
		if !data.IsNotFound(err) {
			return nil, ecode.Internal(err, "failed to load seeker profile")
		}
		p = &domain.SeekerProfile{AccountID: caller.AccountID}
	}

	path, err := s.cvs.Put(caller.AccountID, filename, r)
	if err != nil {
		return nil, ecode.Internal(err, "failed to store CV")
	}

	old := p.CVURL
	p.CVURL = path
	if err := s.accounts.UpsertSeekerProfile(ctx, p); err != nil {
		return nil, ecode.Internal(err, "failed to save seeker profile")
	}

	if old != "" && old != path {
		if err := s.cvs.Delete(old); err != nil {
			s.logger.Warn(ctx, "failed to delete replaced CV", "path", old, "error", err)
		}
	}

	s.logger.Info(ctx, "CV uploaded", "account_id", caller.AccountID, "path", path)
	return p, nil
}

// CVDownloadURL returns a retrievable URL for the caller's stored CV.
func (s *ProfileService) CVDownloadURL(ctx context.Context, caller domain.Caller) (string, error) {
	p, err := s.GetSeekerProfile(ctx, caller)
	if err != nil {
		return "", err
	}
	if p.CVURL == "" {
		return "", ecode.MissingCV("no CV uploaded")
	}
	u, err := s.cvs.URL(p.CVURL)
	if err != nil {
		return "", ecode.Internal(err, "failed to resolve CV URL")
	}
	return u, nil
}

// GetEmployerProfile returns the caller's employer profile, empty when none
// was saved yet.
func (s *ProfileService) GetEmployerProfile(ctx context.Context, caller domain.Caller) (*domain.EmployerProfile, error) {
	if !caller.IsEmployer() {
		return nil, ecode.Authorization("only employers have an employer profile")
	}
	p, err := s.accounts.GetEmployerProfile(ctx, caller.AccountID)
	if err != nil {
		if data.IsNotFound(err) {
			return &domain.EmployerProfile{AccountID: caller.AccountID}, nil
		}
		return nil, ecode.Internal(err, "failed to load employer profile")
	}
	return p, nil
}

// UpdateEmployerProfile upserts the caller's employer profile fields.
func (s *ProfileService) UpdateEmployerProfile(ctx context.Context, caller domain.Caller, in *EmployerProfileInput) (*domain.EmployerProfile, error) {
	if !caller.IsEmployer() {
		return nil, ecode.Authorization("only employers have an employer profile")
	}
	if validator.IsEmpty(in.CompanyName) {
		return nil, ecode.Validation("company_name is required")
	}
	if in.Website != "" && !validator.IsURL(in.Website) {
		return nil, ecode.Validation("website is not a valid URL")
	}

	p := &domain.EmployerProfile{
		AccountID:   caller.AccountID,
		CompanyName: in.CompanyName,
		Website:     in.Website,
		Description: in.Description,
		CompanySize: in.CompanySize,
		Industry:    in.Industry,
	}
	if err := s.accounts.UpsertEmployerProfile(ctx, p); err != nil {
		return nil, ecode.Internal(err, "failed to save employer profile")
	}
	return p, nil
}

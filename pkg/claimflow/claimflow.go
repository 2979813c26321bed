// Package claimflow provides the public API for claimflow-go.
//
// This package wires the claim workflow service to its ledger, audit
// forwarding and document storage.
//
// Example:
//
//	sys, err := claimflow.New(claimflow.Options{
//	    Users:    claimflow.SeedUsers(),
//	    Policies: claimflow.SeedPolicies(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Close()
//
//	claim, err := sys.Service.CreateClaim("usr-001", claimflow.CreateRequest{
//	    Fields: claimflow.ClaimFields{PolicyID: "pol-001", Title: "Hail", Description: "Roof", AmountClaimed: 900},
//	})
package claimflow

import (
	"errors"
	"io"
	"log/slog"

	appClaims "github.com/claimflow/claimflow-go/internal/application/claims"
	"github.com/claimflow/claimflow-go/internal/domain/claims"
	"github.com/claimflow/claimflow-go/internal/domain/security"
	"github.com/claimflow/claimflow-go/internal/infrastructure/audit"
	infraClaims "github.com/claimflow/claimflow-go/internal/infrastructure/claims"
	"github.com/claimflow/claimflow-go/internal/shared"
)

// Re-export types for public API
type (
	// Domain types
	Claim          = claims.Claim
	ClaimFields    = claims.ClaimFields
	FieldsPatch    = claims.FieldsPatch
	Status         = claims.Status
	StatusInfo     = claims.StatusInfo
	User           = claims.User
	Policy         = claims.Policy
	Document       = claims.Document
	AuditEntry     = claims.AuditEntry
	EntryKind      = claims.EntryKind
	DashboardStats = claims.DashboardStats
	Rule           = claims.Rule
	FieldErrors    = claims.FieldErrors
	Role           = security.Role

	// Service types
	Service           = appClaims.Service
	CreateRequest     = appClaims.CreateRequest
	TransitionRequest = appClaims.TransitionRequest
	Upload            = appClaims.Upload
	DocumentStore     = appClaims.DocumentStore

	// Infrastructure types
	Sink  = audit.Sink
	Clock = shared.Clock
)

// Re-export constants
const (
	StatusPendingSubmission   = claims.StatusPendingSubmission
	StatusSubmitted           = claims.StatusSubmitted
	StatusInReview            = claims.StatusInReview
	StatusPendingVerification = claims.StatusPendingVerification
	StatusApproved            = claims.StatusApproved
	StatusRejected            = claims.StatusRejected
	StatusSettled             = claims.StatusSettled
	StatusWithdrawn           = claims.StatusWithdrawn

	RolePolicyholder        = security.RolePolicyholder
	RoleClaimsOfficer       = security.RoleClaimsOfficer
	RoleVerificationOfficer = security.RoleVerificationOfficer
	RoleFinanceTeam         = security.RoleFinanceTeam
	RoleAdmin               = security.RoleAdmin
)

// Re-export errors
var (
	ErrValidation       = claims.ErrValidation
	ErrTransitionDenied = claims.ErrTransitionDenied
	ErrNotFound         = claims.ErrNotFound
	ErrConflict         = claims.ErrConflict
	ErrUnknownStatus    = claims.ErrUnknownStatus
)

// Re-export functions
var (
	Describe        = claims.Describe
	ParseStatus     = claims.ParseStatus
	AllStatuses     = claims.AllStatuses
	WorkflowStages  = claims.WorkflowStages
	Progress        = claims.Progress
	Authorize       = claims.Authorize
	Rules           = claims.Rules
	ParseRole       = security.ParseRole
	AllRoles        = security.AllRoles
	RolePermissions = security.GetRolePermissions
	SeedUsers       = infraClaims.SeedUsers
	SeedPolicies    = infraClaims.SeedPolicies
)

// Options configures a System.
type Options struct {
	Users    []User
	Policies []Policy
	// Sink receives committed audit entries. Nil discards them.
	Sink      Sink
	Documents DocumentStore
	Clock     Clock
	Logger    *slog.Logger
	// ForwarderWorkers and ForwarderBuffer tune audit forwarding.
	ForwarderWorkers int
	ForwarderBuffer  int
}

// System is a wired claim workflow.
type System struct {
	Service   *Service
	Ledger    *audit.Ledger
	Forwarder *audit.Forwarder
	sink      Sink
}

// New wires a claim workflow from opts.
func New(opts Options) (*System, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Sink
	if sink == nil {
		sink = audit.NopSink{}
	}

	users := infraClaims.NewUserDirectory()
	for _, u := range opts.Users {
		if err := users.Add(u); err != nil {
			return nil, err
		}
	}
	policies := infraClaims.NewPolicyDirectory()
	for _, p := range opts.Policies {
		if _, err := users.User(p.HolderID); err != nil {
			return nil, err
		}
		if err := policies.Add(p); err != nil {
			return nil, err
		}
	}

	ledger := audit.NewLedger()
	forwarder := audit.NewForwarder(sink,
		audit.WithWorkers(opts.ForwarderWorkers),
		audit.WithBufferSize(opts.ForwarderBuffer),
		audit.WithLogger(logger),
	)

	svcOpts := []appClaims.Option{
		appClaims.WithPublisher(forwarder),
		appClaims.WithLogger(logger),
	}
	if opts.Clock != nil {
		svcOpts = append(svcOpts, appClaims.WithClock(opts.Clock))
	}
	if opts.Documents != nil {
		svcOpts = append(svcOpts, appClaims.WithDocumentStore(opts.Documents))
	}

	return &System{
		Service:   appClaims.NewService(infraClaims.NewInMemoryClaimRepository(), users, policies, ledger, svcOpts...),
		Ledger:    ledger,
		Forwarder: forwarder,
		sink:      sink,
	}, nil
}

// Close drains audit forwarding and closes the sink if it holds resources.
func (s *System) Close() error {
	s.Forwarder.Close()
	s.Ledger.Close()
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil && !errors.Is(err, audit.ErrSinkClosed) {
			return err
		}
	}
	return nil
}

// Package pipeline is the pure railway composition chaining token
// acquisition, download, parsing, and persistence. Nothing in this
// package performs I/O directly; it only invokes the five injected
// collaborators and short-circuits on the first failure.
package pipeline

import (
	"context"

	"masterlist-ingestor/internal/domain"
	"masterlist-ingestor/internal/result"
)

// AccessTokenProvider is the step-1 token stage as seen by the orchestrator.
type AccessTokenProvider interface {
	AcquireToken(ctx context.Context) result.Result[string]
}

// SfcTokenProvider is the step-2 token stage as seen by the orchestrator.
type SfcTokenProvider interface {
	AcquireToken(ctx context.Context, accessToken string) result.Result[string]
}

// Downloader is the bundle-fetch stage as seen by the orchestrator.
type Downloader interface {
	Download(ctx context.Context, creds domain.AuthCredentials) result.Result[[]byte]
}

// Parser is the decode stage as seen by the orchestrator.
type Parser interface {
	Parse(raw []byte) result.Result[domain.MasterListPayload]
}

// Repository is the persistence stage as seen by the orchestrator.
type Repository interface {
	Store(ctx context.Context, payload domain.MasterListPayload) result.Result[int]
}

// Run chains exactly the five injected collaborators as a railway: each
// stage's success feeds the next, and any failure short-circuits the rest.
// The returned integer is the repository's row count on success.
func Run(ctx context.Context, tokens AccessTokenProvider, login SfcTokenProvider, downloader Downloader, parser Parser, repo Repository) result.Result[int] {
	credentials := result.FlatMap(tokens.AcquireToken(ctx), func(access string) result.Result[domain.AuthCredentials] {
		return result.Map(login.AcquireToken(ctx, access), func(sfc string) domain.AuthCredentials {
			return domain.AuthCredentials{AccessToken: access, SfcToken: sfc}
		})
	})

	bundle := result.FlatMap(credentials, func(creds domain.AuthCredentials) result.Result[[]byte] {
		return downloader.Download(ctx, creds)
	})

	payload := result.FlatMap(bundle, func(raw []byte) result.Result[domain.MasterListPayload] {
		return parser.Parse(raw)
	})

	return result.FlatMap(payload, func(p domain.MasterListPayload) result.Result[int] {
		return repo.Store(ctx, p)
	})
}

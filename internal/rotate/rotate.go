package rotate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/victorsmirnov/db-restore/internal/database"
	"github.com/victorsmirnov/db-restore/internal/secret"
)

// ErrPairMismatch is returned by RotateAll when the two name lists differ in length.
var ErrPairMismatch = errors.New("source and target secret lists differ in length")

// SecretStore is the secret-store collaborator. *secret.Store satisfies it.
type SecretStore interface {
	Get(ctx context.Context, name string) (secret.DatabaseSecret, error)
	Put(ctx context.Context, name string, sec secret.DatabaseSecret) error
}

// Outcome describes one finished rotation of a (source, target) pair.
type Outcome struct {
	Host            string
	SourceSecret    string
	TargetSecret    string
	Username        string
	HostUpdated     bool
	PasswordChanged bool
	Verified        bool
}

// Rotator pushes passwords from target secrets onto the live database accounts
// that the matching source secrets still log in to.
type Rotator struct {
	store SecretStore
	db    database.Client
	log   zerolog.Logger
}

func New(store SecretStore, db database.Client, log zerolog.Logger) *Rotator {
	return &Rotator{store: store, db: db, log: log}
}

// RotateOne reconciles a single pair against targetHost.
//
// The stored target secret is repointed at targetHost, the target password is
// set on the live account if the source credentials still log in there, and the
// freshly re-read target secret is used for a verification login. A failed
// verification is reported through Outcome.Verified, not as an error.
func (r *Rotator) RotateOne(ctx context.Context, targetHost, sourceName, targetName string) (Outcome, error) {
	out := Outcome{Host: targetHost, SourceSecret: sourceName, TargetSecret: targetName}

	source, err := r.store.Get(ctx, sourceName)
	if err != nil {
		return out, fmt.Errorf("read source secret: %w", err)
	}
	target, err := r.store.Get(ctx, targetName)
	if err != nil {
		return out, fmt.Errorf("read target secret: %w", err)
	}
	out.Username = target.Username

	if target.Host != targetHost {
		target.Host = targetHost
		if err := r.store.Put(ctx, targetName, target); err != nil {
			return out, fmt.Errorf("update target host: %w", err)
		}
		out.HostUpdated = true
		r.log.Info().Str("secret", targetName).Str("new_host", targetHost).Msg("updated host in the secret")
	}

	live := credentialsOf(source)
	live.Host = targetHost
	if target.Port != 0 {
		live.Port = target.Port
	}
	if target.Engine != "" {
		live.Engine = target.Engine
	}

	ok, err := r.db.CheckLogin(ctx, live)
	if err != nil {
		return out, fmt.Errorf("check source login: %w", err)
	}
	if ok {
		if err := r.db.SetPassword(ctx, live, target.Password); err != nil {
			return out, fmt.Errorf("set password: %w", err)
		}
		out.PasswordChanged = true
		r.log.Info().
			Str("host", targetHost).
			Str("username", target.Username).
			Str("source_username", live.Username).
			Msg("updated database password")
	} else {
		r.log.Debug().Str("host", targetHost).Str("secret", sourceName).Msg("source credentials rejected, password left as is")
	}

	fresh, err := r.store.Get(ctx, targetName)
	if err != nil {
		return out, fmt.Errorf("re-read target secret: %w", err)
	}
	verified, err := r.db.CheckLogin(ctx, credentialsOf(fresh))
	out.Verified = err == nil && verified

	event := r.log.Info()
	if !out.Verified {
		event = r.log.Warn().Err(err)
	}
	event.Str("host", fresh.Host).
		Str("secret", targetName).
		Str("username", fresh.Username).
		Bool("verified", out.Verified).
		Msg(verificationMessage(out.Verified))

	return out, nil
}

func verificationMessage(ok bool) string {
	if ok {
		return "password verified"
	}
	return "password verification failed"
}

// RotateAll runs RotateOne for each index of the two lists, in order.
// A failing pair is logged and skipped; it never stops the remaining pairs.
func (r *Rotator) RotateAll(ctx context.Context, targetHost string, sourceNames, targetNames []string) error {
	if len(sourceNames) != len(targetNames) {
		return fmt.Errorf("%w: %d sources, %d targets", ErrPairMismatch, len(sourceNames), len(targetNames))
	}
	r.log.Info().Str("host", targetHost).Int("pairs", len(sourceNames)).Msg("rotating secret pairs")

	for i := range sourceNames {
		if _, err := r.RotateOne(ctx, targetHost, sourceNames[i], targetNames[i]); err != nil {
			r.log.Error().
				Err(err).
				Str("host", targetHost).
				Str("source_secret", sourceNames[i]).
				Str("target_secret", targetNames[i]).
				Msg("failed to update password")
		}
	}
	return nil
}

// RotateMaster logs in to the master host with the master secret's current
// password and replaces it with the password held by the source master secret.
func (r *Rotator) RotateMaster(ctx context.Context, masterName, sourceMasterName string) error {
	master, err := r.store.Get(ctx, masterName)
	if err != nil {
		return fmt.Errorf("read master secret: %w", err)
	}
	source, err := r.store.Get(ctx, sourceMasterName)
	if err != nil {
		return fmt.Errorf("read source master secret: %w", err)
	}

	if err := r.db.SetPassword(ctx, credentialsOf(master), source.Password); err != nil {
		return fmt.Errorf("set master password: %w", err)
	}
	r.log.Info().Str("host", master.Host).Str("username", master.Username).Msg("updated master password")
	return nil
}

func credentialsOf(s secret.DatabaseSecret) database.Credentials {
	return database.Credentials{
		Engine:   s.Engine,
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
	}
}

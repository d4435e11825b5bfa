package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	cryptoService "github.com/allisson/carevault/internal/crypto/service"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// DefaultDecryptConcurrency bounds the goroutines of one DecryptFields call.
const DefaultDecryptConcurrency = 4

type orchestrator struct {
	cipher      cryptoService.FieldCipher
	concurrency int
}

// NewOrchestrator creates the PII orchestrator. A concurrency below 1 uses
// DefaultDecryptConcurrency.
func NewOrchestrator(cipher cryptoService.FieldCipher, concurrency int) Orchestrator {
	if concurrency < 1 {
		concurrency = DefaultDecryptConcurrency
	}
	return &orchestrator{
		cipher:      cipher,
		concurrency: concurrency,
	}
}

func (o *orchestrator) PrepareForStorage(
	kind piiDomain.Kind,
	fields map[string]string,
) (*piiDomain.StoragePlan, error) {
	plan := &piiDomain.StoragePlan{
		Encrypted:   make(map[string]*cryptoDomain.EncryptedField),
		Passthrough: make(map[string]string),
	}

	for name, value := range fields {
		spec, err := piiDomain.Spec(kind, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}

		if spec.Policy == piiDomain.StoreClear || spec.Policy == piiDomain.StoreBoth {
			plan.Passthrough[name] = lookupValue(spec, value)
		}

		if spec.Sensitive() {
			field, err := o.cipher.EncryptField(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt %s: %w", name, err)
			}
			plan.Encrypted[name] = field
		}
	}

	return plan, nil
}

// lookupValue normalizes the clear copy of a field stored for lookups.
func lookupValue(spec piiDomain.FieldSpec, value string) string {
	if spec.Policy == piiDomain.StoreBoth && spec.Type == piiDomain.FieldEmail {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return value
}

func (o *orchestrator) PrepareForResponse(
	ctx context.Context,
	grant *accessUseCase.Grant,
	record *piiDomain.Record,
	level piiDomain.MaskingLevel,
	which []string,
) (*piiDomain.SafeRecord, error) {
	if !o.cipher.Ready() {
		return nil, cryptoDomain.ErrMasterKeyNotLoaded
	}
	specs, err := selectSpecs(record.Kind, which)
	if err != nil {
		return nil, err
	}

	safe := &piiDomain.SafeRecord{
		ID:               record.ID,
		Kind:             record.Kind,
		OwnerID:          record.OwnerID,
		Masking:          level,
		Fields:           make(map[string]string, len(specs)),
		HasEncryptedData: make(map[string]bool),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}

	var sensitive []string
	for _, spec := range specs {
		if !spec.Sensitive() {
			if value, ok := record.Passthrough[spec.Name]; ok {
				safe.Fields[spec.Name] = value
			}
			continue
		}
		safe.HasEncryptedData[spec.Name] = record.HasCiphertext(spec.Name)
		sensitive = append(sensitive, spec.Name)
	}

	switch level {
	case piiDomain.MaskFull:
		for _, name := range sensitive {
			if record.HasCiphertext(name) || record.Legacy[name] != "" {
				safe.Fields[name] = piiDomain.Redacted
			}
		}
		return safe, nil

	case piiDomain.MaskPartial, piiDomain.MaskNone:
		if len(sensitive) == 0 {
			return safe, nil
		}
		values, err := o.DecryptFields(ctx, grant, record, sensitive)
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			value, ok := values[spec.Name]
			if !ok {
				continue
			}
			if level == piiDomain.MaskPartial {
				value = Mask(spec.Type, value)
			}
			safe.Fields[spec.Name] = value
		}
		return safe, nil

	default:
		return nil, piiDomain.ErrInvalidMaskingLevel
	}
}

func (o *orchestrator) DecryptFields(
	ctx context.Context,
	grant *accessUseCase.Grant,
	record *piiDomain.Record,
	which []string,
) (map[string]string, error) {
	if err := grant.Covers(record.Kind.ResourceType(), record.ID); err != nil {
		return nil, err
	}

	if len(which) == 0 {
		which = piiDomain.SensitiveFields(record.Kind)
	}

	type slot struct {
		value   string
		present bool
	}
	results := make([]slot, len(which))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, name := range which {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if !record.HasCiphertext(name) {
				if legacy, ok := record.Legacy[name]; ok && legacy != "" {
					results[i] = slot{value: legacy, present: true}
				}
				return nil
			}

			plaintext, err := o.cipher.DecryptBlob(record.Encrypted[name])
			switch {
			case err == nil:
				results[i] = slot{value: plaintext, present: true}
			case errors.Is(err, cryptoDomain.ErrMasterKeyNotLoaded):
				return err
			default:
				results[i] = slot{value: piiDomain.DecryptionFailed, present: true}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(which))
	for i, name := range which {
		if results[i].present {
			values[name] = results[i].value
		}
	}
	return values, nil
}

func (o *orchestrator) ValidatePII(kind piiDomain.Kind, fields map[string]string) piiDomain.ValidationResult {
	return validatePII(kind, fields)
}

// selectSpecs returns the specs for which, or every spec of kind when which is empty.
func selectSpecs(kind piiDomain.Kind, which []string) ([]piiDomain.FieldSpec, error) {
	if len(which) == 0 {
		return piiDomain.Specs(kind)
	}
	specs := make([]piiDomain.FieldSpec, 0, len(which))
	for _, name := range which {
		spec, err := piiDomain.Spec(kind, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

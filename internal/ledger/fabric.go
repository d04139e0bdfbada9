package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"vouch/internal/platform/config"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// Chaincode operations on the credential registry contract.
const (
	txAnchor              = "AnchorCredential"
	txIsValid             = "IsCredentialValid"
	txAuthorize           = "AuthorizeIssuer"
	txRevokeAuthorization = "RevokeIssuerAuthorization"
)

// Fabric anchors credentials through a Hyperledger Fabric gateway. All
// submissions are signed by the operator wallet identity loaded at
// construction; see SerializedClient for the concurrency contract.
type Fabric struct {
	gw            *gateway.Gateway
	contract      *gateway.Contract
	submitTimeout time.Duration
	queryTimeout  time.Duration
}

func NewFabric(cfg config.Ledger) (*Fabric, error) {
	wallet := gateway.NewInMemoryWallet()
	if err := populateWallet(wallet, cfg.MSPID, cfg.CertPath, cfg.KeyPath); err != nil {
		return nil, fmt.Errorf("load operator identity: %w", err)
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(fabconfig.FromFile(filepath.Clean(cfg.ConnectionProfile))),
		gateway.WithIdentity(wallet, operatorLabel),
	)
	if err != nil {
		return nil, fmt.Errorf("connect gateway: %w", err)
	}

	network, err := gw.GetNetwork(cfg.Channel)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("get network %q: %w", cfg.Channel, err)
	}

	return &Fabric{
		gw:            gw,
		contract:      network.GetContract(cfg.Chaincode),
		submitTimeout: cfg.SubmitTimeout,
		queryTimeout:  cfg.QueryTimeout,
	}, nil
}

const operatorLabel = "operator"

func populateWallet(wallet *gateway.Wallet, mspID, certPath, keyPath string) error {
	cert, err := os.ReadFile(filepath.Clean(certPath))
	if err != nil {
		return err
	}
	key, err := os.ReadFile(filepath.Clean(keyPath))
	if err != nil {
		return err
	}
	return wallet.Put(operatorLabel, gateway.NewX509Identity(mspID, string(cert), string(key)))
}

// Anchor submits the canonical fields and waits for inclusion. The chaincode
// answers with the proof reference it recorded; an empty answer means the
// write cannot be proven and is treated as failed.
func (f *Fabric) Anchor(ctx context.Context, req AnchorRequest) (AnchorResult, error) {
	payload, err := f.submit(ctx, f.submitTimeout, txAnchor,
		req.CredentialID.String(), req.SubjectName, req.SubjectContact,
		req.AttributesDigest, req.IssuerIdentity)
	if err != nil {
		return AnchorResult{}, fmt.Errorf("anchor %s: %w", req.CredentialID, err)
	}
	proofRef := strings.TrimSpace(string(payload))
	if proofRef == "" {
		return AnchorResult{}, fmt.Errorf("anchor %s: chaincode returned no proof reference: %w",
			req.CredentialID, sentinel.ErrUnavailable)
	}
	return AnchorResult{ProofRef: proofRef}, nil
}

func (f *Fabric) IsValid(ctx context.Context, credentialID id.CredentialID) (bool, error) {
	payload, err := f.evaluate(ctx, f.queryTimeout, txIsValid, credentialID.String())
	if err != nil {
		return false, fmt.Errorf("validity check %s: %w", credentialID, err)
	}
	return strings.TrimSpace(string(payload)) == "true", nil
}

func (f *Fabric) Authorize(ctx context.Context, issuerIdentity string) error {
	_, err := f.submit(ctx, f.submitTimeout, txAuthorize, issuerIdentity)
	if err != nil {
		return fmt.Errorf("authorize issuer: %w", err)
	}
	return nil
}

func (f *Fabric) RevokeAuthorization(ctx context.Context, issuerIdentity string) error {
	_, err := f.submit(ctx, f.submitTimeout, txRevokeAuthorization, issuerIdentity)
	if err != nil {
		return fmt.Errorf("revoke issuer authorization: %w", err)
	}
	return nil
}

func (f *Fabric) Close() {
	f.gw.Close()
}

type txResult struct {
	payload []byte
	err     error
}

// submit runs a chaincode submission under a bounded timeout. The SDK call
// itself is not context-aware, so the wait is bounded here: when the timeout
// elapses the caller sees a failure even if the transaction later lands,
// leaving an inert on-ledger proof with no local record.
func (f *Fabric) submit(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	return f.bounded(ctx, timeout, func() ([]byte, error) {
		return f.contract.SubmitTransaction(name, args...)
	})
}

func (f *Fabric) evaluate(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	return f.bounded(ctx, timeout, func() ([]byte, error) {
		return f.contract.EvaluateTransaction(name, args...)
	})
}

func (f *Fabric) bounded(ctx context.Context, timeout time.Duration, call func() ([]byte, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan txResult, 1)
	go func() {
		payload, err := call()
		done <- txResult{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ledger call: %w", sentinel.ErrTimeout)
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("ledger call: %w", res.err)
		}
		return res.payload, nil
	}
}

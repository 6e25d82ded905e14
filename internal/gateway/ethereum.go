// Package gateway provides contract gateway implementations: an Ethereum
// JSON-RPC backed gateway for real sales and an in-memory simulator for
// local runs and tests.
package gateway

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/presale/internal/domain"
	"github.com/vadiminshakov/presale/pkg/retrier"
	"go.uber.org/zap"
)

// saleCurrencyDecimals is the fixed-point scale of the sale currency and the
// token price on chain (standard 18-decimal EVM convention).
const saleCurrencyDecimals = 18

// presaleABI covers the read and write surface the controller needs:
//
//	saleInfo()   → (totalRaised, hardCap, participantCount, timeRemaining,
//	                tokenPrice, minContribution, maxContribution, active, finalized)
//	userInfo(a)  → (contribution, tokenAllocation, hasClaimed)
//	contribute() payable
//	claimTokens()
const presaleABI = `[
  {"name":"saleInfo","type":"function","stateMutability":"view","inputs":[],
   "outputs":[
     {"name":"totalRaised","type":"uint256"},
     {"name":"hardCap","type":"uint256"},
     {"name":"participantCount","type":"uint256"},
     {"name":"timeRemaining","type":"uint256"},
     {"name":"tokenPrice","type":"uint256"},
     {"name":"minContribution","type":"uint256"},
     {"name":"maxContribution","type":"uint256"},
     {"name":"active","type":"bool"},
     {"name":"finalized","type":"bool"}]},
  {"name":"userInfo","type":"function","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[
     {"name":"contribution","type":"uint256"},
     {"name":"tokenAllocation","type":"uint256"},
     {"name":"hasClaimed","type":"bool"}]},
  {"name":"contribute","type":"function","stateMutability":"payable","inputs":[],"outputs":[]},
  {"name":"claimTokens","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

// EthereumGateway talks to a deployed presale contract over JSON-RPC.
type EthereumGateway struct {
	client       *ethclient.Client
	contract     *bind.BoundContract
	contractAddr common.Address
	chainID      *big.Int
	privateKey   *ecdsa.PrivateKey
	logger       *zap.Logger
}

// NewEthereumGateway dials the RPC endpoint (with backoff) and binds the
// presale contract. An empty or zero contract address is accepted here and
// reported as "not configured" on first use, so an undeployed sale surfaces
// as a recoverable state instead of a startup crash.
func NewEthereumGateway(ctx context.Context, rpcURL string, chainID int64, contractAddr, privateKeyHex string, logger *zap.Logger) (*EthereumGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rpcURL == "" {
		return nil, errors.New("rpc url is required")
	}

	dialRetrier := retrier.New(retrier.WithMaxRetries(3))
	client, err := retrier.DoWithData(dialRetrier, ctx, func(ctx context.Context) (*ethclient.Client, error) {
		return ethclient.DialContext(ctx, rpcURL)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}

	var privateKey *ecdsa.PrivateKey
	if privateKeyHex != "" {
		key := strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X")
		privateKey, err = crypto.HexToECDSA(key)
		if err != nil {
			return nil, errors.Wrap(err, "parse private key")
		}
	}

	parsed, err := abi.JSON(strings.NewReader(presaleABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse presale ABI")
	}

	addr := common.HexToAddress(contractAddr)
	return &EthereumGateway{
		client:       client,
		contract:     bind.NewBoundContract(addr, parsed, client, client, client),
		contractAddr: addr,
		chainID:      big.NewInt(chainID),
		privateKey:   privateKey,
		logger:       logger,
	}, nil
}

func (g *EthereumGateway) configured() error {
	if g.contractAddr == (common.Address{}) {
		return errors.New("presale contract is not configured")
	}
	return nil
}

// VerifyNetwork reports whether the connected node is on the expected chain.
func (g *EthereumGateway) VerifyNetwork(ctx context.Context) (bool, error) {
	chainID, err := g.client.ChainID(ctx)
	if err != nil {
		return false, errors.Wrap(err, "query chain id")
	}
	return chainID.Cmp(g.chainID) == 0, nil
}

// SaleInfo reads the aggregate sale state from the contract.
func (g *EthereumGateway) SaleInfo(ctx context.Context) (domain.PresaleSnapshot, error) {
	if err := g.configured(); err != nil {
		return domain.PresaleSnapshot{}, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := g.contract.Call(opts, &out, "saleInfo"); err != nil {
		return domain.PresaleSnapshot{}, errors.Wrap(err, "call saleInfo")
	}
	if len(out) != 9 {
		return domain.PresaleSnapshot{}, errors.Errorf("saleInfo returned %d values, want 9", len(out))
	}

	timeRemaining, ok := out[3].(*big.Int)
	if !ok {
		return domain.PresaleSnapshot{}, errors.New("saleInfo: timeRemaining is not uint256")
	}
	participants, ok := out[2].(*big.Int)
	if !ok {
		return domain.PresaleSnapshot{}, errors.New("saleInfo: participantCount is not uint256")
	}
	active, ok := out[7].(bool)
	if !ok {
		return domain.PresaleSnapshot{}, errors.New("saleInfo: active is not bool")
	}
	finalized, ok := out[8].(bool)
	if !ok {
		return domain.PresaleSnapshot{}, errors.New("saleInfo: finalized is not bool")
	}

	snapshot := domain.PresaleSnapshot{
		ParticipantCount: participants.Int64(),
		TimeRemaining:    time.Duration(timeRemaining.Int64()) * time.Second,
		Active:           active,
		Finalized:        finalized,
	}

	amounts := []struct {
		pos  int
		name string
		dst  *decimal.Decimal
	}{
		{0, "totalRaised", &snapshot.TotalRaised},
		{1, "hardCap", &snapshot.HardCap},
		{4, "tokenPrice", &snapshot.TokenPrice},
		{5, "minContribution", &snapshot.MinContribution},
		{6, "maxContribution", &snapshot.MaxContribution},
	}
	for _, a := range amounts {
		value, ok := out[a.pos].(*big.Int)
		if !ok {
			return domain.PresaleSnapshot{}, errors.Errorf("saleInfo: %s is not uint256", a.name)
		}
		*a.dst = weiToDecimal(value)
	}

	return snapshot, nil
}

// UserInfo reads one identity's participation state from the contract.
func (g *EthereumGateway) UserInfo(ctx context.Context, identity string) (domain.UserPosition, error) {
	if err := g.configured(); err != nil {
		return domain.UserPosition{}, err
	}
	if !common.IsHexAddress(identity) {
		return domain.UserPosition{}, errors.Errorf("invalid identity address %q", identity)
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := g.contract.Call(opts, &out, "userInfo", common.HexToAddress(identity)); err != nil {
		return domain.UserPosition{}, errors.Wrap(err, "call userInfo")
	}
	if len(out) != 3 {
		return domain.UserPosition{}, errors.Errorf("userInfo returned %d values, want 3", len(out))
	}

	contribution, ok := out[0].(*big.Int)
	if !ok {
		return domain.UserPosition{}, errors.New("userInfo: contribution is not uint256")
	}
	allocation, ok := out[1].(*big.Int)
	if !ok {
		return domain.UserPosition{}, errors.New("userInfo: tokenAllocation is not uint256")
	}
	hasClaimed, ok := out[2].(bool)
	if !ok {
		return domain.UserPosition{}, errors.New("userInfo: hasClaimed is not bool")
	}

	return domain.UserPosition{
		Contribution:    weiToDecimal(contribution),
		TokenAllocation: weiToDecimal(allocation),
		HasClaimed:      hasClaimed,
	}, nil
}

// Contribute sends a payable contribute() transaction carrying amount as the
// transaction value and waits for it to be mined. The transaction hash is
// returned as the submission id.
func (g *EthereumGateway) Contribute(ctx context.Context, amount decimal.Decimal) (string, error) {
	return g.transact(ctx, "contribute", decimalToWei(amount))
}

// ClaimTokens sends a claimTokens() transaction and waits for it to be mined.
func (g *EthereumGateway) ClaimTokens(ctx context.Context) (string, error) {
	return g.transact(ctx, "claimTokens", nil)
}

func (g *EthereumGateway) transact(ctx context.Context, method string, value *big.Int) (string, error) {
	if err := g.configured(); err != nil {
		return "", err
	}
	if g.privateKey == nil {
		return "", errors.New("no signing key configured, set PRESALE_PRIVATE_KEY")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(g.privateKey, g.chainID)
	if err != nil {
		return "", errors.Wrap(err, "build transactor")
	}
	opts.Context = ctx
	opts.Value = value

	tx, err := g.contract.Transact(opts, method)
	if err != nil {
		return "", errors.Wrapf(err, "submit %s", method)
	}

	g.logger.Info("transaction submitted, waiting for confirmation",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()))

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return "", errors.Wrapf(err, "wait for %s confirmation", method)
	}
	if receipt.Status == 0 {
		return "", errors.Errorf("%s transaction %s reverted", method, tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

// Close releases the underlying RPC client.
func (g *EthereumGateway) Close() {
	g.client.Close()
}

func weiToDecimal(value *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(value, -saleCurrencyDecimals)
}

func decimalToWei(value decimal.Decimal) *big.Int {
	return value.Shift(saleCurrencyDecimals).BigInt()
}

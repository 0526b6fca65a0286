package simulate

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
	"github.com/0xPolygon/polygon-zenith/blockchain/storage/boltdb"
	"github.com/0xPolygon/polygon-zenith/blockchain/storage/leveldb"
	"github.com/0xPolygon/polygon-zenith/blockchain/storage/memory"
	"github.com/0xPolygon/polygon-zenith/builder"
	"github.com/0xPolygon/polygon-zenith/config"
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/helper/common"
	"github.com/0xPolygon/polygon-zenith/transactor"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/verifier"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const (
	verdictsFile = "verdicts.db"

	fundedBalance  = 1_000_000_000
	depositAmount  = 100
	transferAmount = 10
	exitAmount     = 10
)

var (
	// accounts driving the simulated traffic
	userAddr      = types.StringToAddress("0x5e01")
	recipientAddr = types.StringToAddress("0x5e02")
	builderAddr   = types.StringToAddress("0x5e03")

	errDataDirInUse = errors.New("data directory already holds chain data")
)

var storageBackends = map[string]storage.Factory{
	config.StorageMemory:  memory.Factory,
	config.StorageLevelDB: leveldb.Factory,
	config.StorageBoltDB:  boltdb.Factory,
}

type simulation struct {
	logger hclog.Logger
	config *config.Config

	host     *genesis.Host
	rollups  []*genesis.Rollup
	builders []*builder.Builder
	store    *verifier.Store
	verifier *verifier.Verifier

	// verdicts live in a temporary directory when chains are kept in memory
	tmpDir string
	nonce  uint64
}

func newSimulation(logger hclog.Logger, cfg *config.Config, workers int) (*simulation, error) {
	s := &simulation{logger: logger.Named("simulate"), config: cfg}

	if err := s.setup(workers); err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

func (s *simulation) setup(workers int) error {
	key, err := sequencerKey(s.logger)
	if err != nil {
		return err
	}

	version, err := s.config.Version()
	if err != nil {
		return err
	}

	signer := zenith.NewSigner(key, s.config.HostChainID, version)

	params, err := s.genesisParams(version, signer.Address())
	if err != nil {
		return err
	}

	hostDB, err := s.openStorage(s.config.HostChainID)
	if err != nil {
		return err
	}

	if s.host, err = genesis.NewHost(s.logger, hostDB, params); err != nil {
		_ = hostDB.Close()

		return err
	}

	for _, chainID := range s.config.RollupChainIDs {
		db, err := s.openStorage(chainID)
		if err != nil {
			return err
		}

		rollup, err := genesis.NewRollup(s.logger, chainID, db, params)
		if err != nil {
			_ = db.Close()

			return err
		}

		s.rollups = append(s.rollups, rollup)
	}

	if s.store, err = s.openStore(); err != nil {
		return err
	}

	if s.verifier, err = verifier.NewVerifier(s.logger, s.host, s.rollups, s.store, workers); err != nil {
		return err
	}

	now := params.Timestamp
	clock := func() uint64 {
		now += s.config.BlockTime

		return now
	}

	for _, rollup := range s.rollups {
		s.builders = append(s.builders, builder.NewBuilder(s.logger, s.host, signer, builder.Config{
			RollupChainID: rollup.Chain.ChainID(),
			GasLimit:      s.config.PerBlockGasLimit,
			Address:       builderAddr,
			RewardAddress: builderAddr,
			Clock:         clock,
		}))
	}

	return nil
}

// sequencerKey reads the sequencer key from the environment, a throwaway
// key is generated when none is set
func sequencerKey(logger hclog.Logger) (*ecdsa.PrivateKey, error) {
	key, err := config.SequencerKey()
	if err == nil {
		return key, nil
	}

	if !errors.Is(err, config.ErrNoSequencerKey) {
		return nil, err
	}

	logger.Warn("no sequencer key set, using an ephemeral key", "env", config.SequencerKeyEnv)

	return crypto.GenerateECDSAKey()
}

func (s *simulation) genesisParams(version zenith.ProtocolVersion, sequencer types.Address) (*genesis.Params, error) {
	cfg := s.config

	admins := make([]types.Address, 3)

	for i, raw := range []string{cfg.SequencerAdmin, cfg.TokenAdmin, cfg.GasAdmin} {
		admins[i] = sequencer

		if raw == "" {
			continue
		}

		addr, err := config.ParseAddress(raw)
		if err != nil {
			return nil, err
		}

		admins[i] = addr
	}

	sequencers, err := config.ParseAddresses(cfg.Sequencers)
	if err != nil {
		return nil, err
	}

	if len(sequencers) == 0 {
		sequencers = []types.Address{sequencer}
	}

	allowed, err := config.ParseAddresses(cfg.AllowedTokens)
	if err != nil {
		return nil, err
	}

	return &genesis.Params{
		HostChainID:    cfg.HostChainID,
		RollupChainID:  cfg.DefaultRollupChainID(),
		Version:        version,
		RoleDelay:      cfg.RoleDelay,
		Timestamp:      uint64(time.Now().Unix()),
		SequencerAdmin: admins[0],
		TokenAdmin:     admins[1],
		GasAdmin:       admins[2],
		Sequencers:     sequencers,
		AllowedTokens:  allowed,
		Gas: transactor.GasConfig{
			PerBlock:    cfg.PerBlockGasLimit,
			PerTransact: cfg.PerTransactGasLimit,
		},
		Alloc: map[types.Address]uint64{
			userAddr:    fundedBalance,
			builderAddr: fundedBalance,
		},
	}, nil
}

func (s *simulation) openStorage(chainID uint64) (storage.Storage, error) {
	factory, ok := storageBackends[s.config.Storage]
	if !ok {
		return nil, fmt.Errorf("unknown storage %q", s.config.Storage)
	}

	path := ""

	if s.config.Storage != config.StorageMemory {
		dir := strconv.FormatUint(chainID, 10)
		path = filepath.Join(s.config.DataDir, dir)

		if entries, err := os.ReadDir(path); err == nil && len(entries) > 0 {
			return nil, fmt.Errorf("%w: %s", errDataDirInUse, path)
		}

		if err := common.SetupDataDir(s.config.DataDir, []string{dir}); err != nil {
			return nil, err
		}
	}

	return factory(map[string]interface{}{"path": path}, s.logger.Named(s.config.Storage))
}

func (s *simulation) openStore() (*verifier.Store, error) {
	dir := s.config.DataDir

	if s.config.Storage == config.StorageMemory {
		tmpDir, err := os.MkdirTemp("", "zenith-verdicts")
		if err != nil {
			return nil, err
		}

		s.tmpDir, dir = tmpDir, tmpDir
	}

	return verifier.NewStore(filepath.Join(dir, verdictsFile))
}

// Run builds blocks host blocks, rotating over the rollups, and verifies them
func (s *simulation) Run(ctx context.Context, blocks uint64) (*SimulateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &SimulateResult{
		HostChainID: s.config.HostChainID,
		Storage:     s.config.Storage,
		Sequencer:   s.builders[0].Sequencer().String(),
	}

	for i := uint64(0); i < blocks; i++ {
		b := s.builders[i%uint64(len(s.builders))]

		res, err := b.Submit(ctx, s.request(b.RollupChainID()))
		if err != nil {
			return nil, err
		}

		result.Submitted = append(result.Submitted, newSubmissionRow(res))
	}

	verdicts, err := s.verifier.Sync(ctx)
	if err != nil {
		return nil, err
	}

	for _, verdict := range verdicts {
		result.Verdicts = append(result.Verdicts, newVerdictRow(verdict))
	}

	return result, nil
}

// request deposits on the host, moves part of it on the rollup and exits the
// rest back, the exit being filled on the host in the same bundle
func (s *simulation) request(rollupChainID uint64) *builder.Request {
	return &builder.Request{
		HostTransactions: []*types.Transaction{
			s.tx(userAddr, genesis.PassageAddr, depositAmount, &contractsapi.EnterFn{
				RollupChainID:   new(big.Int).SetUint64(rollupChainID),
				RollupRecipient: userAddr,
			}),
		},
		Transactions: []*types.Transaction{
			s.tx(userAddr, recipientAddr, transferAmount, nil),
			s.tx(userAddr, genesis.RollupPassageAddr, exitAmount, nil),
		},
		Fills: []*types.Transaction{
			s.tx(builderAddr, genesis.HostOrdersAddr, exitAmount, &contractsapi.FillFn{
				Outputs: []contractsapi.Output{{
					Token:     types.ZeroAddress,
					Amount:    big.NewInt(exitAmount),
					Recipient: userAddr,
					ChainID:   uint32(s.config.HostChainID),
				}},
			}),
		},
	}
}

func (s *simulation) tx(from, to types.Address, value int64, fn contractsapi.FunctionAbi) *types.Transaction {
	s.nonce++

	tx := &types.Transaction{Nonce: s.nonce, From: from, To: to, Value: big.NewInt(value)}

	if fn != nil {
		input, err := fn.EncodeAbi()
		if err != nil {
			s.logger.Error("failed to encode call", "to", to, "err", err)
		}

		tx.Input = input
	}

	return tx
}

// Close releases the chains and the verdict store
func (s *simulation) Close() {
	var result error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, rollup := range s.rollups {
		if err := rollup.Chain.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if s.host != nil {
		if err := s.host.Chain.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if s.tmpDir != "" {
		if err := os.RemoveAll(s.tmpDir); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		s.logger.Error("failed to close simulation", "err", result)
	}
}

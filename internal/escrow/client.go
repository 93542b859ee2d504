package escrow

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/fundsync/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrCampaignNotFound 链上不存在该活动（creator 为零地址）
	ErrCampaignNotFound = errors.New("campaign not found on chain")
	// ErrStaleRead 链上读取结果缺失关键字段，本次同步不可用
	ErrStaleRead = errors.New("stale or incomplete chain read")
	// ErrChainRevert 链上交易回滚
	ErrChainRevert = errors.New("transaction reverted on chain")
)

// Client 托管合约与USDC合约的访问适配器
type Client struct {
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	chainId       *big.Int
	escrowAddr    common.Address
	tokenAddr     common.Address
	escrow        *bind.BoundContract
	token         *bind.BoundContract
	escrowABI     abi.ABI
	deployBlock   int64
	confirmations int
}

// Init 初始化链客户端
func Init(cfg config.ChainConfig) (*Client, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}

	// 解析服务私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	parsedEscrowABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse escrow ABI: %w", err)
	}
	parsedERC20ABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	escrowAddr := common.HexToAddress(cfg.EscrowAddress)
	tokenAddr := common.HexToAddress(cfg.TokenAddress)

	return &Client{
		client:        client,
		privateKey:    privateKey,
		chainId:       big.NewInt(cfg.ChainId),
		escrowAddr:    escrowAddr,
		tokenAddr:     tokenAddr,
		escrow:        bind.NewBoundContract(escrowAddr, parsedEscrowABI, client, client, client),
		token:         bind.NewBoundContract(tokenAddr, parsedERC20ABI, client, client, client),
		escrowABI:     parsedEscrowABI,
		deployBlock:   cfg.DeployBlock,
		confirmations: cfg.Confirmations,
	}, nil
}

// AccountAddress 服务账户地址
func (c *Client) AccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// EscrowAddress 托管合约地址
func (c *Client) EscrowAddress() common.Address {
	return c.escrowAddr
}

// DeployBlock 托管合约部署区块号
func (c *Client) DeployBlock() int64 {
	return c.deployBlock
}

// FetchCampaignState 读取活动的链上快照，只读、可重复调用
func (c *Client) FetchCampaignState(campaignId int64) (*CampaignState, error) {
	var out []interface{}
	err := c.escrow.Call(&bind.CallOpts{Context: context.Background()}, &out, "getCampaign", big.NewInt(campaignId))
	if err != nil {
		return nil, fmt.Errorf("getCampaign(%d) failed: %w", campaignId, err)
	}
	if len(out) < 7 {
		return nil, fmt.Errorf("%w: getCampaign(%d) returned %d values", ErrStaleRead, campaignId, len(out))
	}

	creator, ok := out[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: getCampaign(%d) creator field", ErrStaleRead, campaignId)
	}
	goal, ok1 := out[1].(*big.Int)
	totalPledged, ok2 := out[2].(*big.Int)
	deadline, ok3 := out[3].(*big.Int)
	finalized, ok4 := out[4].(bool)
	successful, ok5 := out[5].(bool)
	feeBps, ok6 := out[6].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil, fmt.Errorf("%w: getCampaign(%d) malformed result", ErrStaleRead, campaignId)
	}

	state := &CampaignState{
		CampaignID:     campaignId,
		Creator:        creator,
		Goal:           goal,
		TotalPledged:   totalPledged,
		Deadline:       deadline.Int64(),
		Finalized:      finalized,
		Successful:     successful,
		PlatformFeeBps: feeBps.Int64(),
	}

	// 零地址创建者表示活动尚未上链，与网络错误区分开
	if !state.Exists() {
		return nil, fmt.Errorf("%w: id %d", ErrCampaignNotFound, campaignId)
	}

	return state, nil
}

// FetchBackerPledge 读取出资人在活动中的链上状态
func (c *Client) FetchBackerPledge(campaignId int64, backer common.Address) (*BackerPledge, error) {
	var out []interface{}
	err := c.escrow.Call(&bind.CallOpts{Context: context.Background()}, &out, "getPledge", big.NewInt(campaignId), backer)
	if err != nil {
		return nil, fmt.Errorf("getPledge(%d, %s) failed: %w", campaignId, backer.Hex(), err)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: getPledge(%d) returned %d values", ErrStaleRead, campaignId, len(out))
	}

	amount, ok1 := out[0].(*big.Int)
	claimed, ok2 := out[1].(bool)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: getPledge(%d) malformed result", ErrStaleRead, campaignId)
	}

	return &BackerPledge{Amount: amount, HasClaimedRefund: claimed}, nil
}

// BalanceOf 读取地址的USDC余额
func (c *Client) BalanceOf(account common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.token.Call(&bind.CallOpts{Context: context.Background()}, &out, "balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("balanceOf(%s) failed: %w", account.Hex(), err)
	}
	if len(out) < 1 {
		return nil, fmt.Errorf("%w: balanceOf returned no value", ErrStaleRead)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf malformed result", ErrStaleRead)
	}
	return balance, nil
}

// Allowance 读取 owner 授权给托管合约的USDC额度
func (c *Client) Allowance(owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.token.Call(&bind.CallOpts{Context: context.Background()}, &out, "allowance", owner, c.escrowAddr)
	if err != nil {
		return nil, fmt.Errorf("allowance(%s) failed: %w", owner.Hex(), err)
	}
	if len(out) < 1 {
		return nil, fmt.Errorf("%w: allowance returned no value", ErrStaleRead)
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: allowance malformed result", ErrStaleRead)
	}
	return allowance, nil
}

// Approve 授权托管合约转出指定金额的USDC（精确额度，不做无限授权）
func (c *Client) Approve(amount *big.Int) (*types.Receipt, error) {
	return c.transact(c.token, "approve", c.escrowAddr, amount)
}

// CreateCampaign 在托管合约上创建活动
func (c *Client) CreateCampaign(goal *big.Int, durationDays int64, feeBasisPoints int64) (*types.Receipt, error) {
	return c.transact(c.escrow, "createCampaign", goal, big.NewInt(durationDays), big.NewInt(feeBasisPoints))
}

// Pledge 提交出资交易
func (c *Client) Pledge(campaignId int64, amount *big.Int) (*types.Receipt, error) {
	return c.transact(c.escrow, "pledge", big.NewInt(campaignId), amount)
}

// FinalizeCampaign 提交结算交易
func (c *Client) FinalizeCampaign(campaignId int64) (*types.Receipt, error) {
	return c.transact(c.escrow, "finalizeCampaign", big.NewInt(campaignId))
}

// ClaimRefund 提交退款交易
func (c *Client) ClaimRefund(campaignId int64) (*types.Receipt, error) {
	return c.transact(c.escrow, "claimRefund", big.NewInt(campaignId))
}

// TransactionReceipt 按交易哈希获取回执
func (c *Client) TransactionReceipt(txHash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(context.Background(), txHash)
}

// IsConfirmed 交易是否达到所需确认数
func (c *Client) IsConfirmed(receipt *types.Receipt) (bool, error) {
	header, err := c.client.HeaderByNumber(context.Background(), nil)
	if err != nil {
		return false, err
	}
	return header.Number.Uint64() >= receipt.BlockNumber.Uint64()+uint64(c.confirmations), nil
}

// transact 发送交易并等待上链，回滚时返回 ErrChainRevert
func (c *Client) transact(contract *bind.BoundContract, method string, params ...interface{}) (*types.Receipt, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	tx, err := contract.Transact(auth, method, params...)
	if err != nil {
		// 预执行阶段的回滚带有合约的 revert reason，原样向上传递
		if strings.Contains(err.Error(), "execution reverted") {
			return nil, fmt.Errorf("%w: %s", ErrChainRevert, err.Error())
		}
		return nil, fmt.Errorf("%s transaction failed: %w", method, err)
	}

	receipt, err := bind.WaitMined(context.Background(), c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s tx %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s tx %s", ErrChainRevert, method, tx.Hash().Hex())
	}

	return receipt, nil
}

// FilterPledgeEvents 回放指定活动的 PledgeMade 日志，用于补账
func (c *Client) FilterPledgeEvents(campaignId int64, fromBlock int64) ([]PledgeEvent, error) {
	eventID := c.escrowABI.Events["PledgeMade"].ID
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		Addresses: []common.Address{c.escrowAddr},
		Topics: [][]common.Hash{
			{eventID},
			{common.BigToHash(big.NewInt(campaignId))},
		},
	}

	logs, err := c.client.FilterLogs(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("filtering PledgeMade logs for campaign %d: %w", campaignId, err)
	}

	events := make([]PledgeEvent, 0, len(logs))
	for _, log := range logs {
		event, err := decodePledgeMade(c.escrowABI, log)
		if err != nil {
			continue
		}
		events = append(events, *event)
	}

	return events, nil
}

package workflow

import (
	"math/big"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient 工作流所需的链访问能力，由 escrow.Client 实现
type ChainClient interface {
	AccountAddress() common.Address
	DeployBlock() int64

	FetchCampaignState(campaignId int64) (*escrow.CampaignState, error)
	FetchBackerPledge(campaignId int64, backer common.Address) (*escrow.BackerPledge, error)
	BalanceOf(account common.Address) (*big.Int, error)
	Allowance(owner common.Address) (*big.Int, error)

	Approve(amount *big.Int) (*types.Receipt, error)
	CreateCampaign(goal *big.Int, durationDays int64, feeBasisPoints int64) (*types.Receipt, error)
	Pledge(campaignId int64, amount *big.Int) (*types.Receipt, error)
	FinalizeCampaign(campaignId int64) (*types.Receipt, error)
	ClaimRefund(campaignId int64) (*types.Receipt, error)

	TransactionReceipt(txHash common.Hash) (*types.Receipt, error)
	IsConfirmed(receipt *types.Receipt) (bool, error)
	DecodeCreatedEvent(receipt *types.Receipt) (*escrow.CreatedEvent, error)
	DecodePledgeEvent(receipt *types.Receipt) (*escrow.PledgeEvent, error)
	DecodeFinalizedEvent(receipt *types.Receipt) (*escrow.FinalizedEvent, error)
	FilterPledgeEvents(campaignId int64, fromBlock int64) ([]escrow.PledgeEvent, error)
}

package escrow

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DecodeCreatedEvent 从回执中解码 CampaignCreated 事件
func (c *Client) DecodeCreatedEvent(receipt *types.Receipt) (*CreatedEvent, error) {
	log, err := c.findEventLog(receipt, "CampaignCreated")
	if err != nil {
		return nil, err
	}
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("invalid CampaignCreated event: insufficient topics")
	}

	return &CreatedEvent{
		CampaignID:  new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64(),
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
	}, nil
}

// DecodePledgeEvent 从回执中解码 PledgeMade 事件，金额以事件为准
func (c *Client) DecodePledgeEvent(receipt *types.Receipt) (*PledgeEvent, error) {
	log, err := c.findEventLog(receipt, "PledgeMade")
	if err != nil {
		return nil, err
	}
	return decodePledgeMade(c.escrowABI, *log)
}

// DecodeFinalizedEvent 从回执中解码 CampaignFinalized 事件
func (c *Client) DecodeFinalizedEvent(receipt *types.Receipt) (*FinalizedEvent, error) {
	log, err := c.findEventLog(receipt, "CampaignFinalized")
	if err != nil {
		return nil, err
	}
	return decodeCampaignFinalized(c.escrowABI, *log)
}

// findEventLog 在回执日志中定位托管合约发出的指定事件
func (c *Client) findEventLog(receipt *types.Receipt, eventName string) (*types.Log, error) {
	eventID := c.escrowABI.Events[eventName].ID
	for _, log := range receipt.Logs {
		if log.Address != c.escrowAddr {
			continue
		}
		if len(log.Topics) > 0 && log.Topics[0] == eventID {
			return log, nil
		}
	}
	return nil, fmt.Errorf("no %s event in tx %s", eventName, receipt.TxHash.Hex())
}

// decodePledgeMade 解码 PledgeMade 日志
func decodePledgeMade(contractABI abi.ABI, log types.Log) (*PledgeEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("invalid PledgeMade event: insufficient topics")
	}

	values, err := contractABI.Unpack("PledgeMade", log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack PledgeMade data: %w", err)
	}
	if len(values) < 1 {
		return nil, fmt.Errorf("invalid PledgeMade event: empty data")
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid PledgeMade event: amount type")
	}

	return &PledgeEvent{
		CampaignID:  new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64(),
		Backer:      common.BytesToAddress(log.Topics[2].Bytes()),
		Amount:      amount,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
	}, nil
}

// decodeCampaignFinalized 解码 CampaignFinalized 日志
func decodeCampaignFinalized(contractABI abi.ABI, log types.Log) (*FinalizedEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("invalid CampaignFinalized event: insufficient topics")
	}

	values, err := contractABI.Unpack("CampaignFinalized", log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack CampaignFinalized data: %w", err)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("invalid CampaignFinalized event: truncated data")
	}
	successful, ok1 := values[0].(bool)
	totalAmount, ok2 := values[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("invalid CampaignFinalized event: field types")
	}

	return &FinalizedEvent{
		CampaignID:  new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64(),
		Successful:  successful,
		TotalAmount: totalAmount,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
	}, nil
}

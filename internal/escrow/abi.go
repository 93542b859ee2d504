package escrow

// 托管合约ABI定义（简化版）
const escrowABI = `[
	{
		"inputs": [{"name": "campaignId", "type": "uint256"}],
		"name": "getCampaign",
		"outputs": [
			{"name": "creator", "type": "address"},
			{"name": "goal", "type": "uint256"},
			{"name": "totalPledged", "type": "uint256"},
			{"name": "deadline", "type": "uint256"},
			{"name": "finalized", "type": "bool"},
			{"name": "successful", "type": "bool"},
			{"name": "platformFeePercent", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "campaignId", "type": "uint256"},
			{"name": "backer", "type": "address"}
		],
		"name": "getPledge",
		"outputs": [
			{"name": "amount", "type": "uint256"},
			{"name": "hasClaimedRefund", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "goal", "type": "uint256"},
			{"name": "durationDays", "type": "uint256"},
			{"name": "feeBasisPoints", "type": "uint256"}
		],
		"name": "createCampaign",
		"outputs": [{"name": "campaignId", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "campaignId", "type": "uint256"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "pledge",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "campaignId", "type": "uint256"}],
		"name": "finalizeCampaign",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "campaignId", "type": "uint256"}],
		"name": "claimRefund",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"}
		],
		"name": "CampaignCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"},
			{"indexed": true, "name": "backer", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "PledgeMade",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"},
			{"indexed": false, "name": "successful", "type": "bool"},
			{"indexed": false, "name": "totalAmount", "type": "uint256"}
		],
		"name": "CampaignFinalized",
		"type": "event"
	}
]`

// ERC20 代币ABI定义（仅用到的部分）
const erc20ABI = `[
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

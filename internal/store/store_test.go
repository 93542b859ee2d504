package store

import (
	"testing"

	"github.com/blues/fundsync/internal/database"
	"github.com/blues/fundsync/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestCampaign(t *testing.T, s *CampaignStore) *model.Campaign {
	t.Helper()

	campaign := &model.Campaign{
		Title:          "Open hardware synth",
		GoalAmount:     decimal.NewFromInt(1000),
		DurationDays:   30,
		CreatorAddress: "0x00000000000000000000000000000000000000c1",
	}
	require.NoError(t, s.Create(campaign))
	return campaign
}

func deployCampaign(t *testing.T, s *CampaignStore, campaign *model.Campaign, blockchainId int64) {
	t.Helper()

	status := model.CampaignStatusActive
	require.NoError(t, s.UpdateBlockchainData(campaign.ID, BlockchainUpdate{
		BlockchainCampaignID: &blockchainId,
		Status:               &status,
	}))
}

func TestCreateDefaultsToDraft(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))

	campaign := &model.Campaign{
		Title:          "Test",
		GoalAmount:     decimal.NewFromInt(500),
		DurationDays:   14,
		CreatorAddress: "0xc1",
		Status:         model.CampaignStatusActive, // 客户端传入的状态被忽略
		RaisedAmount:   decimal.NewFromInt(99),
	}
	require.NoError(t, s.Create(campaign))

	loaded, err := s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusDraft, loaded.Status)
	assert.True(t, loaded.RaisedAmount.IsZero())
	assert.Nil(t, loaded.BlockchainCampaignID)
}

func TestCreateValidation(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))

	assert.Error(t, s.Create(&model.Campaign{GoalAmount: decimal.NewFromInt(1), DurationDays: 1, CreatorAddress: "0xc1"}))
	assert.Error(t, s.Create(&model.Campaign{Title: "t", GoalAmount: decimal.Zero, DurationDays: 1, CreatorAddress: "0xc1"}))
	assert.Error(t, s.Create(&model.Campaign{Title: "t", GoalAmount: decimal.NewFromInt(1), DurationDays: 0, CreatorAddress: "0xc1"}))
	assert.Error(t, s.Create(&model.Campaign{Title: "t", GoalAmount: decimal.NewFromInt(1), DurationDays: 1}))
}

func TestUpdateBlockchainDataBindsIDOnce(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)

	first := int64(7)
	deployCampaign(t, s, campaign, first)

	loaded, err := s.GetByID(campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.BlockchainCampaignID)
	assert.Equal(t, first, *loaded.BlockchainCampaignID)
	assert.Equal(t, model.CampaignStatusActive, loaded.Status)

	// 二次绑定必须被拒绝，已有ID保持不变
	second := int64(8)
	err = s.UpdateBlockchainData(campaign.ID, BlockchainUpdate{BlockchainCampaignID: &second})
	assert.ErrorIs(t, err, ErrAlreadyDeployed)

	loaded, err = s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *loaded.BlockchainCampaignID)
}

func TestUpdateBlockchainDataIsSparse(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	// 只更新金额，状态与链上ID不被覆盖
	raised := decimal.NewFromInt(42)
	require.NoError(t, s.UpdateBlockchainData(campaign.ID, BlockchainUpdate{RaisedAmount: &raised}))

	loaded, err := s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusActive, loaded.Status)
	assert.Equal(t, int64(7), *loaded.BlockchainCampaignID)
	assert.True(t, loaded.RaisedAmount.Equal(raised))

	// 空更新是无害的
	require.NoError(t, s.UpdateBlockchainData(campaign.ID, BlockchainUpdate{}))
}

func TestInsertPledgeAtomicIncrement(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	pledge := &model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0x00000000000000000000000000000000000000b1",
		Amount:        decimal.NewFromInt(50),
		TxHash:        "0xtx1",
		BlockNumber:   100,
	}
	require.NoError(t, s.InsertPledge(pledge))

	loaded, err := s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", loaded.RaisedAmount.String())
	assert.Equal(t, 1, loaded.BackersCount)

	// 同一出资人的第二笔出资：金额累加，人数不变
	require.NoError(t, s.InsertPledge(&model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0x00000000000000000000000000000000000000b1",
		Amount:        decimal.NewFromInt(25),
		TxHash:        "0xtx2",
	}))

	loaded, err = s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "75", loaded.RaisedAmount.String())
	assert.Equal(t, 1, loaded.BackersCount)

	sum, err := s.SumConfirmedPledges(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "75", sum.String())
}

func TestInsertPledgeRejectsReplay(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	pledge := &model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(50),
		TxHash:        "0xtx1",
	}
	require.NoError(t, s.InsertPledge(pledge))

	// 同一交易哈希重放被拒绝，金额不被重复累加
	replay := &model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(50),
		TxHash:        "0xtx1",
	}
	err := s.InsertPledge(replay)
	assert.ErrorIs(t, err, ErrDuplicatePledge)

	loaded, err := s.GetByID(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", loaded.RaisedAmount.String())

	exists, err := s.HasPledgeTx("0xtx1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertPledgeUnknownCampaignRollsBack(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))

	err := s.InsertPledge(&model.Pledge{
		CampaignID:    999,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(50),
		TxHash:        "0xtx1",
	})
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	// 事务回滚后不留下出资记录
	exists, err := s.HasPledgeTx("0xtx1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMarkPledgeRefunded(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	require.NoError(t, s.InsertPledge(&model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(25),
		TxHash:        "0xtx1",
	}))

	require.NoError(t, s.MarkPledgeRefunded(campaign.ID, "0xb1", "0xrefund1"))

	pledges, _, err := s.PledgesByCampaign(campaign.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, pledges, 1)
	assert.Equal(t, model.PledgeStatusRefunded, pledges[0].Status)
	assert.Equal(t, "0xrefund1", pledges[0].RefundTxHash)

	// 已退款的出资不再是可退款对象
	err = s.MarkPledgeRefunded(campaign.ID, "0xb1", "0xrefund2")
	assert.ErrorIs(t, err, ErrPledgeNotFound)

	// 退款后的合计不再包含该笔
	sum, err := s.SumConfirmedPledges(campaign.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestMinTierAmount(t *testing.T) {
	db := newTestDB(t)
	s := NewCampaignStore(db)
	campaign := newTestCampaign(t, s)

	_, ok, err := s.MinTierAmount(campaign.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Create(&model.Tier{CampaignID: campaign.ID, Title: "Silver", Amount: decimal.NewFromInt(25)}).Error)
	require.NoError(t, db.Create(&model.Tier{CampaignID: campaign.ID, Title: "Gold", Amount: decimal.NewFromInt(100)}).Error)

	min, ok, err := s.MinTierAmount(campaign.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "25", min.String())
}

func TestListReconcilable(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))

	deployed := newTestCampaign(t, s)
	deployCampaign(t, s, deployed, 7)

	// 未上链与终态的活动都不进入对账清单
	newTestCampaign(t, s)
	finished := newTestCampaign(t, s)
	deployCampaign(t, s, finished, 8)
	status := model.CampaignStatusSuccessful
	require.NoError(t, s.UpdateBlockchainData(finished.ID, BlockchainUpdate{Status: &status}))

	campaigns, err := s.ListReconcilable(10)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, deployed.ID, campaigns[0].ID)
}

func TestGetByCreatorAndBacker(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	require.NoError(t, s.InsertPledge(&model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(10),
		TxHash:        "0xtx1",
	}))

	byCreator, err := s.GetByCreator(campaign.CreatorAddress)
	require.NoError(t, err)
	assert.Len(t, byCreator, 1)

	byBacker, err := s.GetByBacker("0xb1")
	require.NoError(t, err)
	require.Len(t, byBacker, 1)
	assert.Equal(t, campaign.ID, byBacker[0].Campaign.ID)
}

func TestCampaignStats(t *testing.T) {
	s := NewCampaignStore(newTestDB(t))
	campaign := newTestCampaign(t, s)
	deployCampaign(t, s, campaign, 7)

	require.NoError(t, s.InsertPledge(&model.Pledge{
		CampaignID:    campaign.ID,
		BackerAddress: "0xb1",
		Amount:        decimal.NewFromInt(250),
		TxHash:        "0xtx1",
	}))

	stats, err := s.CampaignStats(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["pledge_count"])
	completion := stats["completion_percentage"].(decimal.Decimal)
	assert.True(t, completion.Equal(decimal.NewFromInt(25)), "completion = %s", completion)
}

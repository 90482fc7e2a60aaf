package entity

// 内置序列键
const (
	SeqKeyPurchaseOrder = "purchase_order" // 采购单号 <ORG>-<YEAR>-NNN
	SeqKeyReference     = "reference"      // 引用码 <PREFIX>NNNN
	SeqKeyCatalog       = "catalog"        // 目录编号，带下限修正
	SeqKeySplit         = "split"          // 拆分交付编号
)

// SequenceCounter 通用序列计数器
// 按 key 原子自增，用于生成各类人读编号。
type SequenceCounter struct {
	Key   string `json:"key" gorm:"primaryKey;size:64"`
	Value int64  `json:"value" gorm:"not null;default:0"`
}

func (SequenceCounter) TableName() string {
	return "sourcing_sequence_counters"
}

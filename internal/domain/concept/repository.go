package concept

// Repository 概念仓储接口
type Repository interface {
	// Save 保存概念（创建或更新）
	Save(c *Concept) error

	// FindByID 根据 ID 查找概念
	FindByID(id string) (*Concept, error)

	// FindAll 获取所有概念，按更新时间倒序
	FindAll() ([]*Concept, error)

	// Delete 删除概念
	Delete(id string) error
}

package session

// Repository 开发会话仓储接口
// 显式传入依赖方，替代全局会话表（get/put/update/remove by id）
type Repository interface {
	// Save 保存会话（创建或更新）
	Save(s *DevelopmentSession) error

	// FindByID 根据 ID 查找会话
	FindByID(id string) (*DevelopmentSession, error)

	// FindByConceptID 查找概念下的所有会话，按创建时间升序
	FindByConceptID(conceptID string) ([]*DevelopmentSession, error)

	// Delete 删除会话
	Delete(id string) error
}

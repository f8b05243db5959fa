package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "httplog"
)

const (
	// RedisKeyRecords — список, в который shipper дописывает пачки записей.
	RedisKeyRecords = RedisNamespace + ":records"

	// RedisChanRecords — канал-уведомление о новой пачке (payload — размер пачки).
	RedisChanRecords = RedisNamespace + ":records-signal"
)

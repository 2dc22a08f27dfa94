package delete_slot

// Request модель запроса на удаление слота
type Request struct {
	SlotID int64
	Force  bool // удалить вместе со всеми бронированиями слота
}

// Response результат удаления
type Response struct {
	SlotID          int64
	Cascaded        bool
	DeletedBookings int
}

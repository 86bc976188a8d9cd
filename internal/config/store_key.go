package config

// StoreKeyStruct namespaces the fixed key names of the durable store.
type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// LastLoginKey returns the storage key holding the last-used login identifier.
func (r *StoreKeyStruct) LastLoginKey() string {
	return "examsim:last_login"
}

// AttemptsKey returns the storage key holding the capped attempt history.
func (r *StoreKeyStruct) AttemptsKey() string {
	return "examsim:attempts"
}

var StoreKey = NewStoreKeyStruct()

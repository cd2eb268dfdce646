package lease

import "errors"

var (
	// ErrLeaseExists возвращается, когда хотя бы один из создаваемых лизов
	// уже существует — место на этот интервал занято
	ErrLeaseExists = errors.New("lease.repository: lease already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("lease.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("lease.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("lease.repository: failed to scan row")
)

package producer

import (
	"codeberg.org/mutker/chartpipe/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrSourceFailed     = errors.ErrorCode("producer_source_failed")
	ErrNVMLInitFailed   = errors.ErrorCode("producer_nvml_init_failed")
	ErrDeviceNotFound   = errors.ErrorCode("producer_gpu_device_not_found")
	ErrUtilizationRead  = errors.ErrorCode("producer_gpu_utilization_read_failed")
	ErrTemperatureRead  = errors.ErrorCode("producer_gpu_temperature_read_failed")
	ErrNVMLShutdownFail = errors.ErrorCode("producer_nvml_shutdown_failed")
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// newNVMLError creates an error from an NVML return code
func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{ret: ret}
}

// IsNVMLSuccess checks if a Return value indicates success
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}

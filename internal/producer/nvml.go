package producer

import (
	"sync"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"codeberg.org/mutker/chartpipe/internal/series"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	percent        = 100.0
	maxTemperature = 100.0
)

// GPUSource samples the first NVIDIA GPU: core utilisation, memory
// utilisation, and fan speed (or temperature on fanless boards), each
// normalised to [0, 1].
type GPUSource struct {
	device   nvml.Device
	fanCount int
	mu       sync.Mutex
	closed   bool
	log      *logger.Component
}

func NewGPUSource() (*GPUSource, error) {
	errFactory := errors.New()

	if ret := nvml.Init(); !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrNVMLInitFailed, newNVMLError(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if !IsNVMLSuccess(ret) {
		nvml.Shutdown()
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	g := &GPUSource{device: device, log: logger.With("gpu")}

	if name, ret := device.GetName(); IsNVMLSuccess(ret) {
		g.log.Info().Msgf("Detected GPU: %v", name)
	} else {
		g.log.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	if count, ret := device.GetNumFans(); IsNVMLSuccess(ret) {
		g.fanCount = count
	}
	g.log.Debug().Msgf("Detected fans: %d", g.fanCount)

	return g, nil
}

func (g *GPUSource) Next() ([series.Count]float64, error) {
	errFactory := errors.New()
	g.mu.Lock()
	defer g.mu.Unlock()

	var out [series.Count]float64
	if g.closed {
		return out, errFactory.New(ErrSourceFailed).WithMessage("GPU source closed")
	}

	util, ret := g.device.GetUtilizationRates()
	if !IsNVMLSuccess(ret) {
		return out, errFactory.Wrap(ErrUtilizationRead, newNVMLError(ret))
	}
	out[0] = float64(util.Gpu) / percent
	out[1] = float64(util.Memory) / percent

	if g.fanCount > 0 {
		if speed, ret := g.device.GetFanSpeed_v2(0); IsNVMLSuccess(ret) {
			out[2] = float64(speed) / percent
			return out, nil
		}
	}

	temp, ret := g.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return out, errFactory.Wrap(ErrTemperatureRead, newNVMLError(ret))
	}
	out[2] = float64(temp) / maxTemperature

	return out, nil
}

// Close shuts NVML down. Close is idempotent.
func (g *GPUSource) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	if ret := nvml.Shutdown(); !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrNVMLShutdownFail, newNVMLError(ret))
	}

	return nil
}

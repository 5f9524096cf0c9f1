package biometric

import (
	"context"
	"time"

	"rollcall.io/infrastructure/biometric/remote"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/logger"
	"rollcall.io/infrastructure/network"
)

// BiometricService is the process wide face service built at start up.
var BiometricService *FaceService

var modelNetwork *network.NetworkController

// InitialiseBiometricService wires the model server adapter and probes it.
// A failed probe is logged; requests then fail with a model unavailable error
// until the sidecar comes up.
func InitialiseBiometricService(cfg env.Config) *FaceService {
	modelNetwork = &network.NetworkController{
		BaseUrl: cfg.ModelServiceURL,
		Timeout: cfg.ModelTimeout,
	}
	server := &remote.ModelServer{
		Network:        modelNetwork,
		ClassNames:     cfg.SpoofClassNames,
		ConfThreshold:  cfg.SpoofConfThresh,
		SpoofImageSize: cfg.SpoofImageSize,
	}
	BiometricService = &FaceService{
		Locator:   server,
		Embedder:  server,
		Spoof:     server,
		Landmarks: server,
		Health:    server,
		Dimension: cfg.EmbeddingDim,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := BiometricService.Healthy(ctx); err != nil {
		logger.Warning("model server is not reachable yet", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	} else {
		logger.Info("model server connected")
	}
	return BiometricService
}

func CleanUp() {
	if modelNetwork != nil {
		modelNetwork.CloseIdleConnections()
	}
}

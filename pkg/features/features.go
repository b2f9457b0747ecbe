package features

import (
	"strings"

	"birthdaybook/pkg/config"
)

// Known feature names (FEATURE_<NAME> in the environment).
const (
	Registration    = "REGISTRATION"
	ProfilePictures = "PROFILE_PICTURES"
)

// defaults holds the state of features that were not configured explicitly.
var defaults = map[string]bool{
	Registration:    true,
	ProfilePictures: true,
}

// IsEnabled verifica se um feature toggle específico está habilitado.
// Nomes são comparados em maiúsculas, como são lidos das variáveis de ambiente.
// Uma feature não configurada usa o default acima, ou desabilitada se não houver default.
func IsEnabled(featureName string) bool {
	enabled, exists := GetFeatureToggleState(featureName)
	if !exists {
		return defaults[strings.ToUpper(featureName)]
	}
	return enabled
}

// GetFeatureToggleState retorna o estado de um feature toggle e se ele foi configurado.
func GetFeatureToggleState(featureName string) (enabled bool, exists bool) {
	if config.Cfg.FeatureToggles == nil {
		return false, false
	}
	enabled, exists = config.Cfg.FeatureToggles[strings.ToUpper(featureName)]
	return enabled, exists
}

package image

import "github.com/secmon-lab/hovertodo/pkg/domain/interfaces"

// Service generates images from text prompts
type Service = interfaces.ImageGenerator

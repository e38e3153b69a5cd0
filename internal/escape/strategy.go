package escape

import (
	"fmt"
	"strings"
)

const (
	doubleQuoteConstant               = `"`
	literalNewlineReplacementConstant = `\n`
	newlineCharacterConstant          = '\n'
	quoteStrategyNameConstant         = "quote"
	escapeCharacterStrategyName       = "char"
	escapeNewlineStrategyNameConstant = "char-newline"
	noneStrategyNameConstant          = "none"
	unknownStrategyTemplateConstant   = "unknown escape strategy %q"
)

// Strategy turns text into a form the target shell reads back as one literal token.
type Strategy interface {
	Escape(text string) string
}

// None returns text unchanged.
var None Strategy = noneStrategy{}

type noneStrategy struct{}

func (noneStrategy) Escape(text string) string {
	return text
}

type quoteStrategy struct {
	context Context
}

// Escape wraps text in double quotes when any special character occurs. Interior
// characters are left untouched.
func (strategy quoteStrategy) Escape(text string) string {
	if !strategy.context.containsCharacterToEscape(text) {
		return text
	}
	return doubleQuoteConstant + text + doubleQuoteConstant
}

type escapeCharacterStrategy struct {
	context Context
}

// Escape prefixes every special character with the escape character.
func (strategy escapeCharacterStrategy) Escape(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, character := range text {
		if strategy.context.requiresEscaping(character) {
			builder.WriteRune(strategy.context.escapeCharacter)
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

type escapeCharacterAndNewlineStrategy struct {
	base escapeCharacterStrategy
}

// Escape applies the per-character strategy and then rewrites newlines.
func (strategy escapeCharacterAndNewlineStrategy) Escape(text string) string {
	escapedText := strategy.base.Escape(text)
	var builder strings.Builder
	builder.Grow(len(escapedText))
	for _, character := range escapedText {
		if character == newlineCharacterConstant {
			builder.WriteString(literalNewlineReplacementConstant)
			continue
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

// EscapeEach escapes every element of texts with strategy.
func EscapeEach(strategy Strategy, texts []string) []string {
	escapedTexts := make([]string, 0, len(texts))
	for _, text := range texts {
		escapedTexts = append(escapedTexts, strategy.Escape(text))
	}
	return escapedTexts
}

// StrategyNames lists the names accepted by ResolveStrategy.
func StrategyNames() []string {
	return []string{noneStrategyNameConstant, quoteStrategyNameConstant, escapeCharacterStrategyName, escapeNewlineStrategyNameConstant}
}

// ResolveStrategy derives a named strategy from context. Character strategies on a
// context without an escape character panic, as WithEscapeCharacter does.
func ResolveStrategy(context Context, strategyName string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(strategyName)) {
	case noneStrategyNameConstant:
		return None, nil
	case quoteStrategyNameConstant:
		return context.WithQuotes(), nil
	case escapeCharacterStrategyName:
		return context.WithEscapeCharacter(), nil
	case escapeNewlineStrategyNameConstant:
		return context.WithEscapeCharacterAndNewlines(), nil
	default:
		return nil, fmt.Errorf(unknownStrategyTemplateConstant, strategyName)
	}
}

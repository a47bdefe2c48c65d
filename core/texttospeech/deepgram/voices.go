package deepgram

type deepgramVoice string

const (
	VoiceAuraThalia    deepgramVoice = "aura-2-thalia-en"
	VoiceAuraAndromeda deepgramVoice = "aura-2-andromeda-en"
	VoiceAuraAgathe    deepgramVoice = "aura-2-agathe-fr"
	VoiceAuraHector    deepgramVoice = "aura-2-hector-fr"
	VoiceAuraCeleste   deepgramVoice = "aura-2-celeste-es"
	VoiceAuraNestor    deepgramVoice = "aura-2-nestor-es"
	VoiceAuraViktoria  deepgramVoice = "aura-2-viktoria-de"
	VoiceAuraJulius    deepgramVoice = "aura-2-julius-de"
	VoiceAuraLivia     deepgramVoice = "aura-2-livia-it"
	VoiceAuraDionisio  deepgramVoice = "aura-2-dionisio-it"
	VoiceAuraIzanami   deepgramVoice = "aura-2-izanami-ja"
	VoiceAuraFujin     deepgramVoice = "aura-2-fujin-ja"

	defaultVoice = VoiceAuraThalia
)

// languageVoices lists the voice used for each supported language code.
// Deepgram has no Chinese voice, "zh" falls back to the default voice.
var languageVoices = map[string]deepgramVoice{
	"en": VoiceAuraThalia,
	"fr": VoiceAuraAgathe,
	"es": VoiceAuraCeleste,
	"de": VoiceAuraViktoria,
	"it": VoiceAuraLivia,
	"ja": VoiceAuraIzanami,
}

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{
		VoiceAuraThalia, VoiceAuraAndromeda,
		VoiceAuraAgathe, VoiceAuraHector,
		VoiceAuraCeleste, VoiceAuraNestor,
		VoiceAuraViktoria, VoiceAuraJulius,
		VoiceAuraLivia, VoiceAuraDionisio,
		VoiceAuraIzanami, VoiceAuraFujin,
	}
}

package host

import "github.com/cpcf/t4toolbox/output"

// Standalone is a Transformation for running templates outside an IDE. It
// composes a project provider and an output receiver, either of which may be
// nil.
type Standalone struct {
	templateFile string
	provider     ProjectProvider
	receiver     OutputReceiver
	session      Session
	errors       ErrorList
}

func NewStandalone(templateFile string, provider ProjectProvider, receiver OutputReceiver) *Standalone {
	return &Standalone{
		templateFile: templateFile,
		provider:     provider,
		receiver:     receiver,
		session:      make(Session),
	}
}

func (s *Standalone) Host() Host { return s }

func (s *Standalone) Session() Session { return s.session }

func (s *Standalone) Errors() *ErrorList { return &s.errors }

func (s *Standalone) TemplateFile() string { return s.templateFile }

func (s *Standalone) GetPropertyValue(name string) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetPropertyValue(name)
}

func (s *Standalone) GetMetadataValue(itemPath, name string) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetMetadataValue(itemPath, name)
}

func (s *Standalone) UpdatedOutputFiles(inputFile string, outputs []output.File) error {
	if s.receiver == nil {
		return nil
	}
	return s.receiver.UpdatedOutputFiles(inputFile, outputs)
}
